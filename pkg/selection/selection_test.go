package selection

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"pgregory.net/rapid"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name     string
		cities   []string
		wantAll  []string
		wantSel  []string
		wantLast string
	}{
		{
			name:     "three cities",
			cities:   []string{"Austin", "Boston", "Chicago"},
			wantAll:  []string{"Austin", "Boston", "Chicago"},
			wantSel:  []string{"Austin"},
			wantLast: "Austin",
		},
		{
			name:     "unsorted with duplicates",
			cities:   []string{"Dallas", "Austin", "Dallas", "Boston"},
			wantAll:  []string{"Austin", "Boston", "Dallas"},
			wantSel:  []string{"Austin"},
			wantLast: "Austin",
		},
		{
			name:    "empty",
			cities:  nil,
			wantAll: []string{},
			wantSel: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			calls := 0
			s.Subscribe(func(Snapshot) { calls++ })
			s.Initialize(tt.cities)

			snap := s.Snapshot()
			if !slices.Equal(snap.AllCities, tt.wantAll) && !(len(snap.AllCities) == 0 && len(tt.wantAll) == 0) {
				t.Errorf("AllCities = %v, want %v", snap.AllCities, tt.wantAll)
			}
			if !slices.Equal(snap.Selected, tt.wantSel) {
				t.Errorf("Selected = %v, want %v", snap.Selected, tt.wantSel)
			}
			if snap.LastSelected != tt.wantLast {
				t.Errorf("LastSelected = %q, want %q", snap.LastSelected, tt.wantLast)
			}
			if calls != 1 {
				t.Errorf("notifications = %d, want 1", calls)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	s := New()
	if len(s.Selected()) != 0 || s.LastSelected() != "" || len(s.AllCities()) != 0 {
		t.Errorf("new state = %+v, want empty", s.Snapshot())
	}
}

func TestToggle(t *testing.T) {
	s := New()
	s.Initialize([]string{"Austin", "Boston", "Chicago"})

	if err := s.Toggle("Chicago"); err != nil {
		t.Fatal(err)
	}
	if got := s.Selected(); !slices.Equal(got, []string{"Austin", "Chicago"}) {
		t.Errorf("Selected = %v, want [Austin Chicago]", got)
	}
	if s.LastSelected() != "Chicago" {
		t.Errorf("LastSelected = %q, want Chicago", s.LastSelected())
	}

	if err := s.Toggle("Boston"); err != nil {
		t.Fatal(err)
	}
	// Removing the last selected falls back to the most recently added.
	if err := s.Toggle("Boston"); err != nil {
		t.Fatal(err)
	}
	if s.LastSelected() != "Chicago" {
		t.Errorf("LastSelected after removing Boston = %q, want Chicago", s.LastSelected())
	}

	// Removing a non-last selection still recomputes from recency.
	if err := s.Toggle("Austin"); err != nil {
		t.Fatal(err)
	}
	if s.LastSelected() != "Chicago" {
		t.Errorf("LastSelected = %q, want Chicago", s.LastSelected())
	}

	if err := s.Toggle("Chicago"); err != nil {
		t.Fatal(err)
	}
	if len(s.Selected()) != 0 || s.LastSelected() != "" {
		t.Errorf("state = %+v, want empty selection and no last", s.Snapshot())
	}
}

func TestToggleUnknownCity(t *testing.T) {
	s := New()
	s.Initialize([]string{"Austin"})
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	err := s.Toggle("Gotham")
	if !errors.Is(err, ErrUnknownCity) {
		t.Errorf("Toggle() error = %v, want ErrUnknownCity", err)
	}
	if !errs.Is(err, errs.ErrCodeUnknownCity) {
		t.Errorf("GetCode() = %v, want UNKNOWN_CITY", errs.GetCode(err))
	}
	if err := s.Select("Gotham"); !errors.Is(err, ErrUnknownCity) {
		t.Errorf("Select() error = %v, want ErrUnknownCity", err)
	}
	if calls != 0 {
		t.Errorf("notifications = %d, want 0", calls)
	}
	if s.Has("Gotham") || !s.Has("Austin") {
		t.Error("Has does not match the initialized cities")
	}
}

func TestSelect(t *testing.T) {
	s := New()
	s.Initialize([]string{"Austin", "Boston", "Chicago"})
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	// Already selected and already last: no change, no notification.
	if err := s.Select("Austin"); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("notifications after no-op Select = %d, want 0", calls)
	}

	if err := s.Select("Boston"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 || s.LastSelected() != "Boston" {
		t.Errorf("calls = %d last = %q, want 1 Boston", calls, s.LastSelected())
	}

	// Selected but not last: last changes, notifies.
	if err := s.Select("Austin"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 || s.LastSelected() != "Austin" {
		t.Errorf("calls = %d last = %q, want 2 Austin", calls, s.LastSelected())
	}

	// Austin was bumped, so removing it falls back to Boston.
	if err := s.Toggle("Austin"); err != nil {
		t.Fatal(err)
	}
	if s.LastSelected() != "Boston" {
		t.Errorf("LastSelected = %q, want Boston", s.LastSelected())
	}
}

func TestToggleSelectAll(t *testing.T) {
	s := New()
	s.Initialize([]string{"Austin", "Boston", "Chicago"})
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	s.ToggleSelectAll()
	if got := s.Selected(); len(got) != 3 {
		t.Errorf("Selected = %v, want all", got)
	}
	if s.LastSelected() != "Chicago" {
		t.Errorf("LastSelected = %q, want Chicago", s.LastSelected())
	}

	s.ToggleSelectAll()
	if got := s.Selected(); len(got) != 0 || s.LastSelected() != "" {
		t.Errorf("state = %+v, want cleared", s.Snapshot())
	}
	if calls != 2 {
		t.Errorf("notifications = %d, want 2", calls)
	}
}

func TestToggleSelectAllNoCities(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })
	s.ToggleSelectAll()
	if calls != 1 {
		t.Errorf("notifications = %d, want 1", calls)
	}
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	s := New()
	var order []int
	s.Subscribe(func(Snapshot) { order = append(order, 1) })
	cancel := s.Subscribe(func(Snapshot) { order = append(order, 2) })
	s.Subscribe(func(Snapshot) { order = append(order, 3) })

	s.Initialize([]string{"A"})
	if !slices.Equal(order, []int{1, 2, 3}) {
		t.Errorf("order = %v, want [1 2 3]", order)
	}

	order = nil
	cancel()
	s.ToggleSelectAll()
	if !slices.Equal(order, []int{1, 3}) {
		t.Errorf("order after unsubscribe = %v, want [1 3]", order)
	}
}

func TestObserverMayReadState(t *testing.T) {
	s := New()
	var seen string
	s.Subscribe(func(snap Snapshot) {
		// Must not deadlock: observers run outside the lock.
		seen = s.LastSelected()
		if seen != snap.LastSelected {
			t.Errorf("observer saw %q, snapshot %q", seen, snap.LastSelected)
		}
	})
	s.Initialize([]string{"Boston", "Austin"})
	if seen != "Austin" {
		t.Errorf("observer saw %q, want Austin", seen)
	}
}

func TestConcurrentToggles(t *testing.T) {
	s := New()
	s.Initialize([]string{"A", "B", "C", "D"})

	var wg sync.WaitGroup
	for _, c := range []string{"A", "B", "C", "D"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = s.Toggle(c)
			}
		}()
	}
	wg.Wait()

	// Each city was toggled an even number of times.
	if got := s.Selected(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Selected = %v, want [A]", got)
	}
}

func TestToggleIsSelfInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cities := rapid.SliceOfNDistinct(rapid.StringMatching(`[A-Z]{1,6}`), 1, 8, rapid.ID[string]).Draw(t, "cities")
		s := New()
		s.Initialize(cities)

		ops := rapid.SliceOfN(rapid.SampledFrom(cities), 0, 10).Draw(t, "setup")
		for _, c := range ops {
			_ = s.Toggle(c)
		}

		city := rapid.SampledFrom(cities).Draw(t, "city")
		before := s.IsSelected(city)
		others := s.Selected()
		_ = s.Toggle(city)
		_ = s.Toggle(city)
		if s.IsSelected(city) != before {
			t.Fatalf("membership of %s changed: %v -> %v", city, before, s.IsSelected(city))
		}
		if !slices.Equal(s.Selected(), others) {
			t.Fatalf("selection changed: %v -> %v", others, s.Selected())
		}
	})
}

func TestToggleSelectAllTwiceFromEmptyOrFull(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cities := rapid.SliceOfNDistinct(rapid.StringMatching(`[A-Z]{1,6}`), 1, 8, rapid.ID[string]).Draw(t, "cities")
		s := New()
		s.Initialize(cities)
		if rapid.Bool().Draw(t, "full") {
			s.ToggleSelectAll()
		} else {
			_ = s.Toggle(s.LastSelected())
		}

		before := s.Selected()
		s.ToggleSelectAll()
		s.ToggleSelectAll()
		if !slices.Equal(s.Selected(), before) {
			t.Fatalf("selection %v -> %v", before, s.Selected())
		}
	})
}
