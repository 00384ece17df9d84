// Package store publishes contribution grids as immutable snapshots.
//
// A Store moves through three states: Empty before any build, Built after a
// rebuild with zero counts, and Aggregated once source dates have been folded
// in. Every call builds a fresh grid and swaps it in whole, so readers never
// see a partially aggregated grid.
package store

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agis/acgrid/internal/calendar"
	"github.com/agis/acgrid/internal/grid"
)

type State int

const (
	StateEmpty State = iota
	StateBuilt
	StateAggregated
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateAggregated:
		return "aggregated"
	default:
		return "empty"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a read-only view of one build. Every accessor hands out its own
// copy of Weeks.
type Snapshot struct {
	ID            string             `json:"id"`
	Version       uint64             `json:"version"`
	State         State              `json:"state"`
	Configuration grid.Configuration `json:"configuration"`
	Axis          grid.AxisMode      `json:"axis"`
	WeekStart     string             `json:"week_start"`
	Timezone      string             `json:"timezone"`
	Weeks         [][]grid.Cell      `json:"weeks"`
	Stats         grid.Stats         `json:"stats"`
	Matched       int                `json:"matched"`
	Dropped       int                `json:"dropped"`
	BuiltAt       time.Time          `json:"built_at"`
}

// Observer is told about every snapshot the store publishes.
type Observer interface {
	SnapshotChanged(Snapshot)
}

type ObserverFunc func(Snapshot)

func (f ObserverFunc) SnapshotChanged(s Snapshot) { f(s) }

type Store struct {
	cal calendar.Calendar
	now func() time.Time

	mu      sync.RWMutex
	current *Snapshot
	version uint64

	obsMu     sync.Mutex
	observers []subscription
	nextSubID int
}

type subscription struct {
	id  int
	obs Observer
}

func New(cal calendar.Calendar) *Store {
	return &Store{cal: cal, now: time.Now}
}

// Setup builds a grid for cfg, folds sources into it and publishes the result.
// Whatever was published before is discarded.
func (s *Store) Setup(cfg grid.Configuration, sources []time.Time, axis grid.AxisMode) Snapshot {
	return s.SetupWeighted(cfg, sources, nil, axis)
}

// SetupWeighted is Setup with additional dates that carry their own count.
func (s *Store) SetupWeighted(cfg grid.Configuration, sources []time.Time, weighted []grid.Weighted, axis grid.AxisMode) Snapshot {
	g := grid.Build(s.cal, cfg, axis)
	matched, dropped := g.Aggregate(sources)
	for _, w := range weighted {
		if g.Add(w.Date, w.Count) {
			matched++
		} else {
			dropped++
		}
	}
	return s.publish(g, StateAggregated, matched, dropped)
}

// Rebuild publishes a grid for cfg with every count at zero.
func (s *Store) Rebuild(cfg grid.Configuration, axis grid.AxisMode) Snapshot {
	return s.publish(grid.Build(s.cal, cfg, axis), StateBuilt, 0, 0)
}

// Reset drops the published snapshot. Observers are not notified.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return s.current.clone(), true
}

func (s *Store) Configuration() (grid.Configuration, bool) {
	snap, ok := s.Snapshot()
	return snap.Configuration, ok
}

func (s *Store) State() State {
	snap, ok := s.Snapshot()
	if !ok {
		return StateEmpty
	}
	return snap.State
}

// Subscribe registers o for future snapshots. The returned func removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.observers = append(s.observers, subscription{id: id, obs: o})
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) publish(g *grid.Grid, state State, matched, dropped int) Snapshot {
	snap := Snapshot{
		ID:            uuid.NewString(),
		State:         state,
		Configuration: g.Configuration(),
		Axis:          g.Axis(),
		WeekStart:     s.cal.WeekStart().String(),
		Timezone:      s.cal.Location().String(),
		Weeks:         g.Weeks(),
		Stats:         g.Stats(),
		Matched:       matched,
		Dropped:       dropped,
		BuiltAt:       s.now().UTC(),
	}

	s.mu.Lock()
	s.version++
	snap.Version = s.version
	published := snap
	s.current = &published
	s.mu.Unlock()

	s.notify(snap)
	return snap.clone()
}

func (s *Store) notify(snap Snapshot) {
	s.obsMu.Lock()
	subs := append([]subscription(nil), s.observers...)
	s.obsMu.Unlock()
	for _, sub := range subs {
		sub.obs.SnapshotChanged(snap.clone())
	}
}

func (s Snapshot) clone() Snapshot {
	weeks := make([][]grid.Cell, len(s.Weeks))
	for i, w := range s.Weeks {
		weeks[i] = slices.Clone(w)
	}
	s.Weeks = weeks
	return s
}
