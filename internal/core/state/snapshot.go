package state

import (
	"encoding/json"
	"fmt"
	"sort"
)

// snapshot is the wire form of a Store. Entities are sorted by id so the
// same store always serializes to the same bytes.
type snapshot struct {
	WindowSize    int           `json:"window_size"`
	InitialRating float64       `json:"initial_rating"`
	Entities      []EntityState `json:"entities"`
}

// Snapshot serializes the full store, enabling incremental runs that
// resume from where a previous contest stream left off.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	states := make([]EntityState, 0, len(s.entities))
	for _, e := range s.entities {
		e.mu.Lock()
		states = append(states, e.st.clone())
		e.mu.Unlock()
	}
	s.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].EntityID < states[j].EntityID })

	return json.MarshalIndent(snapshot{
		WindowSize:    s.window,
		InitialRating: s.initial,
		Entities:      states,
	}, "", "  ")
}

// Restore replaces the store's contents with a previously taken snapshot.
// The snapshot's window size must match the store's: mixing window sizes
// would silently corrupt momentum features.
func (s *Store) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode state snapshot: %w", err)
	}
	if snap.WindowSize != s.window {
		return fmt.Errorf("snapshot window size %d does not match store window size %d", snap.WindowSize, s.window)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = make(map[string]*entry, len(snap.Entities))
	for _, st := range snap.Entities {
		s.entities[st.EntityID] = &entry{st: st.clone()}
	}
	return nil
}
