package srs

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	snap := &MemorySnapshot{
		Version:    SnapshotVersion,
		Stability:  17.3051,
		Difficulty: 0.4219,
		Reps:       42,
		Lapses:     3,
	}

	b, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	got, err := UnmarshalSnapshot(b)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if *got != *snap {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, snap)
	}
}

func TestSnapshotNilAndEmpty(t *testing.T) {
	b, err := MarshalSnapshot(nil)
	if err != nil || b != nil {
		t.Errorf("MarshalSnapshot(nil) = %v, %v; want nil, nil", b, err)
	}
	s, err := UnmarshalSnapshot(nil)
	if err != nil || s != nil {
		t.Errorf("UnmarshalSnapshot(nil) = %v, %v; want nil, nil", s, err)
	}
}

func TestSnapshotRejectsUnknownVersion(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte(`{"version":99}`)); err == nil {
		t.Error("expected error for unknown snapshot version")
	}
}
