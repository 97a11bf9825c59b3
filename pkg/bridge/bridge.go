// Package bridge connects node clicks on a render surface to the
// selection state, and selection changes back to the surface's highlight.
package bridge

import (
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stormgraph/pkg/selection"
)

// Mode decides what a click does to the selection.
type Mode int

const (
	// ModeToggle adds an unselected city and removes a selected one.
	ModeToggle Mode = iota
	// ModeSelect adds the city and never removes it.
	ModeSelect
)

// String returns the mode name used in configuration.
func (m Mode) String() string {
	if m == ModeSelect {
		return "select"
	}
	return "toggle"
}

// ParseMode parses "toggle" or "select". Anything else yields ModeToggle
// and false.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "toggle", "":
		return ModeToggle, true
	case "select":
		return ModeSelect, true
	}
	return ModeToggle, false
}

// Highlighter shows the last selected city.
type Highlighter interface {
	SetHighlight(lastSelected string)
}

// Bridge routes clicks into a selection state and mirrors its changes
// onto attached highlighters.
type Bridge struct {
	state  *selection.State
	mode   Mode
	logger *log.Logger

	mu     sync.Mutex
	cancel []func()
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for rejected clicks.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a bridge for state.
func New(state *selection.State, mode Mode, opts ...Option) *Bridge {
	b := &Bridge{
		state:  state,
		mode:   mode,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode returns the click mode.
func (b *Bridge) Mode() Mode { return b.mode }

// OnNodeClick applies a click on city to the selection. Clicks on cities
// the selection does not know are logged and dropped.
func (b *Bridge) OnNodeClick(city string) {
	var err error
	switch b.mode {
	case ModeSelect:
		err = b.state.Select(city)
	default:
		err = b.state.Toggle(city)
	}
	if err != nil {
		if errors.Is(err, selection.ErrUnknownCity) {
			b.logger.Warn("click on unknown city", "city", city)
			return
		}
		b.logger.Error("click failed", "city", city, "err", err)
	}
}

// Attach makes h follow the selection's last selected city. h is brought
// up to date immediately.
func (b *Bridge) Attach(h Highlighter) {
	unsubscribe := b.state.Subscribe(func(s selection.Snapshot) {
		h.SetHighlight(s.LastSelected)
	})
	b.mu.Lock()
	b.cancel = append(b.cancel, unsubscribe)
	b.mu.Unlock()
	h.SetHighlight(b.state.LastSelected())
}

// Close detaches every highlighter.
func (b *Bridge) Close() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()
	for _, fn := range cancel {
		fn()
	}
}
