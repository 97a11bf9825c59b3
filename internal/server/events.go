package server

import (
	"fmt"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/stormgraph/pkg/render"
)

// hub fans redraw signals out to connected event streams. Signals
// coalesce: a client that is still writing the previous frame receives
// only the latest one.
type hub struct {
	mu      sync.RWMutex
	clients map[chan struct{}]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[chan struct{}]struct{})}
}

func (h *hub) broadcast() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) subscribe() (chan struct{}, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan struct{}, 1)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *hub) unsubscribe(ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		close(ch)
	}
	h.clients = make(map[chan struct{}]struct{})
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// tickEvent is the payload of a "tick" event.
type tickEvent struct {
	Generation   string           `json:"generation"`
	Step         int              `json:"step"`
	Alpha        float64          `json:"alpha"`
	Done         bool             `json:"done"`
	LastSelected string           `json:"last_selected"`
	Transform    render.Transform `json:"transform"`
}

func newTickEvent(sc render.Scene) tickEvent {
	return tickEvent{
		Generation:   sc.Generation,
		Step:         sc.Step,
		Alpha:        sc.Alpha,
		Done:         sc.Done,
		LastSelected: sc.LastSelected,
		Transform:    sc.Transform,
	}
}

// serveEvents streams one "tick" event per redraw of the container.
func (s *Server) serveEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	ch, ok := s.events.subscribe()
	if !ok {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.events.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func() bool {
		data, err := json.Marshal(newTickEvent(s.container.Surface().Scene()))
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: tick\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-ch:
			if !ok || !send() {
				return
			}
		}
	}
}
