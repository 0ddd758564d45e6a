package storage

import (
	"encoding/json"
	"fmt"

	"github.com/crestline/leasebot/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

// Listing and session documents are stored as JSON: they arrive from the
// ingestion feed as JSON and staying in that shape keeps them inspectable
// with plain badger tooling. Embedding vectors are large and purely numeric,
// so they use the compact MUS binary encoding instead.

var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// MarshalProperty serializes a Property to bytes.
func MarshalProperty(p *core.Property) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalProperty deserializes a Property from bytes.
func UnmarshalProperty(data []byte) (*core.Property, error) {
	var p core.Property
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &p, nil
}

// MarshalSession serializes a ChatSession to bytes.
func MarshalSession(s *core.ChatSession) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalSession deserializes a ChatSession from bytes.
func UnmarshalSession(data []byte) (*core.ChatSession, error) {
	var s core.ChatSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &s, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(v []float32) []byte {
	buf := make([]byte, vectorSer.Size(v))
	vectorSer.Marshal(v, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	v, _, err := vectorSer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return v, nil
}
