package srs

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion tags the current memory snapshot schema.
const SnapshotVersion = 1

// MemorySnapshot is the full internal state of the memory model for one
// card. It is opaque to the rest of the system and must round-trip
// exactly: the snapshot is stored as a versioned blob alongside the
// typed scheduling fields, never reconstructed from them.
type MemorySnapshot struct {
	Version    int     `json:"version"`
	Stability  float64 `json:"stability"`
	Difficulty float64 `json:"difficulty"`
	Reps       int     `json:"reps"`
	Lapses     int     `json:"lapses"`
}

// MarshalSnapshot serializes a snapshot for storage. A nil snapshot
// serializes to nil (SM2 cards carry no memory state).
func MarshalSnapshot(s *MemorySnapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("srs: marshal snapshot: %w", err)
	}
	return b, nil
}

// UnmarshalSnapshot rehydrates a stored snapshot. Empty input yields nil.
func UnmarshalSnapshot(data []byte) (*MemorySnapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s MemorySnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("srs: unmarshal snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("srs: unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}
