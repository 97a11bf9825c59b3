// Package selection tracks which cities are selected and which one was
// selected most recently.
//
// [State] is the single source of truth for selection in a session. Every
// mutation goes through one of its operations, and every operation that
// changes (or, for some, merely touches) the state notifies subscribers
// with a [Snapshot]. Subscribers run synchronously on the mutating
// goroutine after the state lock is released, so they may read the state
// again or trigger a redraw without deadlocking.
package selection

import (
	"fmt"
	"slices"
	"sync"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

// ErrUnknownCity is returned when an operation names a city outside the
// initialized set.
var ErrUnknownCity = errs.New(errs.ErrCodeUnknownCity, "unknown city")

// Snapshot is an immutable copy of the selection state.
type Snapshot struct {
	AllCities    []string `json:"all_cities"`    // Sorted ascending
	Selected     []string `json:"selected"`      // In AllCities order
	LastSelected string   `json:"last_selected"` // Empty when none
}

// IsSelected reports whether city is in the snapshot's selection.
func (s Snapshot) IsSelected(city string) bool {
	return slices.Contains(s.Selected, city)
}

type observer struct {
	id int
	fn func(Snapshot)
}

// State is the selection state machine. The zero value is ready to use
// and has no cities.
type State struct {
	mu        sync.Mutex
	all       []string
	known     map[string]bool
	selected  map[string]bool
	recency   []string // Selected cities, least recently added first
	last      string
	observers []observer
	nextID    int
}

// New returns an empty state.
func New() *State {
	return &State{}
}

// Subscribe registers fn to be called after every notifying operation.
// The returned function removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
	}
}

// Initialize replaces the city set with the sorted distinct cities and
// selects the first one. It always notifies.
func (s *State) Initialize(cities []string) {
	s.mu.Lock()
	all := slices.Clone(cities)
	slices.Sort(all)
	all = slices.Compact(all)

	s.all = all
	s.known = make(map[string]bool, len(all))
	for _, c := range all {
		s.known[c] = true
	}
	s.selected = make(map[string]bool)
	s.recency = nil
	s.last = ""
	if len(all) > 0 {
		s.add(all[0])
		s.last = all[0]
	}
	s.unlockAndNotify()
}

// Toggle flips city's membership. Removing a city hands "last selected" to
// the most recently added remaining city; adding makes city the last
// selected. It always notifies.
func (s *State) Toggle(city string) error {
	s.mu.Lock()
	if !s.known[city] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	if s.selected[city] {
		s.remove(city)
		s.last = ""
		if n := len(s.recency); n > 0 {
			s.last = s.recency[n-1]
		}
	} else {
		s.add(city)
		s.last = city
	}
	s.unlockAndNotify()
	return nil
}

// Select adds city if absent and makes it the last selected. It notifies
// only when something changed.
func (s *State) Select(city string) error {
	s.mu.Lock()
	if !s.known[city] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	changed := false
	if !s.selected[city] {
		s.add(city)
		changed = true
	} else {
		s.bump(city)
	}
	if s.last != city {
		s.last = city
		changed = true
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	s.unlockAndNotify()
	return nil
}

// ToggleSelectAll clears the selection when every city is selected and
// selects every city otherwise, making the last city the last selected.
// It always notifies.
func (s *State) ToggleSelectAll() {
	s.mu.Lock()
	if len(s.selected) == len(s.all) {
		s.selected = make(map[string]bool)
		s.recency = nil
		s.last = ""
	} else {
		for _, c := range s.all {
			if !s.selected[c] {
				s.add(c)
			}
		}
		lastCity := s.all[len(s.all)-1]
		s.bump(lastCity)
		s.last = lastCity
	}
	s.unlockAndNotify()
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// AllCities returns the sorted city set.
func (s *State) AllCities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all)
}

// Selected returns the selected cities in sorted order.
func (s *State) Selected() []string {
	return s.Snapshot().Selected
}

// Has reports whether city is one of the known cities.
func (s *State) Has(city string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.known[city]
}

// IsSelected reports whether city is selected.
func (s *State) IsSelected(city string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[city]
}

// LastSelected returns the last selected city, or "" when none.
func (s *State) LastSelected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *State) add(city string) {
	if s.selected == nil {
		s.selected = make(map[string]bool)
	}
	s.selected[city] = true
	s.recency = append(s.recency, city)
}

func (s *State) remove(city string) {
	delete(s.selected, city)
	s.recency = slices.DeleteFunc(s.recency, func(c string) bool { return c == city })
}

// bump moves an already selected city to the most recent position.
func (s *State) bump(city string) {
	s.recency = slices.DeleteFunc(s.recency, func(c string) bool { return c == city })
	s.recency = append(s.recency, city)
}

func (s *State) snapshot() Snapshot {
	snap := Snapshot{
		AllCities:    slices.Clone(s.all),
		Selected:     make([]string, 0, len(s.selected)),
		LastSelected: s.last,
	}
	for _, c := range s.all {
		if s.selected[c] {
			snap.Selected = append(snap.Selected, c)
		}
	}
	return snap
}

// unlockAndNotify releases the lock taken by the caller and then calls
// every observer with the post-mutation snapshot.
func (s *State) unlockAndNotify() {
	snap := s.snapshot()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()
	for _, o := range observers {
		o.fn(snap)
	}
}
