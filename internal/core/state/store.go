package state

import (
	"sync"

	"github.com/charleschow/pregame/internal/telemetry"
)

// Store is the repository of entity states, keyed by entity id.
//
// The store's RWMutex protects the map itself (lookups, inserts).
// Each entry carries its own mutex so entities that never share a
// contest can be applied concurrently; the dataset builder guarantees
// that two entities sharing a contest are both applied before either
// is read for a later contest.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*entry

	window  int
	initial float64
}

type entry struct {
	mu sync.Mutex
	st EntityState
}

func NewStore(windowSize int, initialRating float64) *Store {
	return &Store{
		entities: make(map[string]*entry),
		window:   windowSize,
		initial:  initialRating,
	}
}

// Get returns a copy of the entity's state, or an initialized default for
// an unseen entity. Reads never insert: asking about an entity is
// side-effect-free and idempotent.
func (s *Store) Get(id string) EntityState {
	s.mu.RLock()
	e, ok := s.entities[id]
	s.mu.RUnlock()

	if !ok {
		return EntityState{EntityID: id, Rating: s.initial}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.clone()
}

// Apply folds one contest outcome into the entity's state, creating the
// entity on first contact. Window eviction, streak bookkeeping, counters
// and the rating all advance together under the entity's lock.
func (s *Store) Apply(id string, out ContestOutcome) {
	e := s.ensure(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.apply(out, s.window)
}

func (s *Store) ensure(id string) *entry {
	s.mu.RLock()
	e, ok := s.entities[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entities[id]; ok {
		return e
	}
	e = &entry{st: EntityState{EntityID: id, Rating: s.initial}}
	s.entities[id] = e
	telemetry.Metrics.TrackedEntities.Set(int64(len(s.entities)))
	return e
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
