package cache

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/minio/highwayhash"
)

// hashKey is the fixed HighwayHash key. Cache keys only need to be
// stable and well distributed, not secret.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// ContentKey derives a cache key from the raw document bytes, the
// requested page subset, and the schema version of the stored value.
// An empty page list means all pages.
func ContentKey(prefix string, data []byte, pages []int, schemaVersion int) string {
	h, err := highwayhash.New128(hashKey)
	if err != nil {
		// The key length is a compile-time constant, so this cannot
		// happen at runtime.
		panic(fmt.Sprintf("cache: highwayhash init: %v", err))
	}

	h.Write(data)

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(schemaVersion))
	h.Write(buf[:])
	for _, p := range pages {
		binary.LittleEndian.PutUint64(buf[:], uint64(p))
		h.Write(buf[:])
	}

	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}
