package cache

import "time"

// Cache is the minimal key/value contract the engine depends on.
type Cache interface {
	// Get returns the value stored under key, or ok=false on a miss.
	Get(key string) (value []byte, ok bool)

	// Set stores value under key for at most ttl. A ttl of zero or less
	// means the entry does not expire.
	Set(key string, value []byte, ttl time.Duration)
}

// Nop is a Cache that stores nothing. Useful to disable caching.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)            { return nil, false }
func (Nop) Set(string, []byte, time.Duration)    {}
