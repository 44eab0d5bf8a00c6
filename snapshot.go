package store

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a detached copy of one scope's values.
type Snapshot struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// Snapshot captures the current values of every declared key.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{ID: s.id, Values: s.valuesCopy()}
}

// ToJSON serialises the snapshot for logging or transport.
func (s Snapshot) ToJSON() ([]byte, error) {
	type alias Snapshot
	return json.Marshal(alias(s))
}

// SnapshotFromJSON decodes a payload produced by ToJSON. Numbers decode as
// float64, following encoding/json.
func SnapshotFromJSON(payload []byte) (Snapshot, error) {
	type alias Snapshot
	var snap alias
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("store: decode snapshot: %w", err)
	}
	if snap.Values == nil {
		snap.Values = map[string]any{}
	}
	return Snapshot(snap), nil
}
