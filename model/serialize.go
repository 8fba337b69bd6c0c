package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is bumped whenever the serialized shape of the result
// types changes. Decoding rejects envelopes written under a different
// version so stale cache entries are recomputed instead of misread.
const SchemaVersion = 1

// ErrSchemaMismatch is returned when decoding an envelope written under a
// different schema version.
var ErrSchemaMismatch = errors.New("result schema version mismatch")

// envelope wraps a serialized result with its schema version.
type envelope struct {
	Schema  int             `json:"schema"`
	Payload json.RawMessage `json:"payload"`
}

func encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(envelope{Schema: SchemaVersion, Payload: payload})
}

func decode(data []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Schema != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, env.Schema, SchemaVersion)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

// EncodeOCRResult serializes a DocumentOCRResult into a versioned envelope.
func EncodeOCRResult(r *DocumentOCRResult) ([]byte, error) {
	return encode(r)
}

// DecodeOCRResult deserializes a DocumentOCRResult from a versioned
// envelope. Returns ErrSchemaMismatch (wrapped) for entries written under
// an older or newer schema.
func DecodeOCRResult(data []byte) (*DocumentOCRResult, error) {
	var r DocumentOCRResult
	if err := decode(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// EncodeTableResult serializes a DocumentTableResult into a versioned
// envelope.
func EncodeTableResult(r *DocumentTableResult) ([]byte, error) {
	return encode(r)
}

// DecodeTableResult deserializes a DocumentTableResult from a versioned
// envelope.
func DecodeTableResult(data []byte) (*DocumentTableResult, error) {
	var r DocumentTableResult
	if err := decode(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
