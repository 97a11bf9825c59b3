package server

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/stormgraph/pkg/bridge"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/pipeline"
	"github.com/matzehuels/stormgraph/pkg/render"
	"github.com/matzehuels/stormgraph/pkg/selection"
)

type stubSource struct {
	g   graph.Graph
	err error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(context.Context) (graph.Graph, error) { return s.g, s.err }

func stormGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: "Austin"}, {ID: "Boston"}, {ID: "Chicago"}},
		Edges: []graph.Edge{
			{Source: "Austin", Target: "Boston", Label: "3 storm(s)", Weight: 3},
			{Source: "Boston", Target: "Chicago", Label: "1 storm(s)", Weight: 1},
		},
	}
}

func newTestServer(t *testing.T, src *stubSource, mode bridge.Mode) (*Server, *httptest.Server) {
	t.Helper()
	opts := Options{Mode: mode, Render: render.Options{TickInterval: time.Millisecond}}
	opts.Render.Simulation.MaxSteps = 30
	s, err := New(pipeline.NewRunner(nil, nil, nil), src, opts)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	if _, err := s.Reload(context.Background(), false); err != nil && src.err == nil {
		t.Fatal(err)
	}
	return s, ts
}

func do(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestIndexAndVersion(t *testing.T) {
	_, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("index Content-Type = %q", ct)
	}

	var info map[string]string
	if code := do(t, http.MethodGet, ts.URL+"/api/version", &info); code != http.StatusOK || info["version"] == "" {
		t.Errorf("version: %d %v", code, info)
	}
}

func TestSceneAndSVG(t *testing.T) {
	s, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Container().Wait(ctx); err != nil {
		t.Fatal(err)
	}

	var sc render.Scene
	if code := do(t, http.MethodGet, ts.URL+"/api/scene", &sc); code != http.StatusOK {
		t.Fatalf("scene status %d", code)
	}
	if len(sc.Nodes) != 3 || len(sc.Edges) != 2 || !sc.Done {
		t.Errorf("scene: %d nodes, %d edges, done %v", len(sc.Nodes), len(sc.Edges), sc.Done)
	}
	if sc.LastSelected != "Austin" {
		t.Errorf("LastSelected = %q, want first city", sc.LastSelected)
	}

	resp, err := http.Get(ts.URL + "/api/graph.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("svg Content-Type = %q", ct)
	}
}

func TestClickToggle(t *testing.T) {
	s, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	var snap selection.Snapshot
	if code := do(t, http.MethodPost, ts.URL+"/api/nodes/Chicago/click", &snap); code != http.StatusOK {
		t.Fatalf("click status %d", code)
	}
	if snap.LastSelected != "Chicago" || len(snap.Selected) != 2 {
		t.Errorf("after click: %+v", snap)
	}
	if got := s.Container().Surface().Scene().LastSelected; got != "Chicago" {
		t.Errorf("scene LastSelected = %q", got)
	}

	do(t, http.MethodPost, ts.URL+"/api/nodes/Chicago/click", &snap)
	if snap.LastSelected != "Austin" || len(snap.Selected) != 1 {
		t.Errorf("after second click: %+v", snap)
	}
}

func TestClickSelectMode(t *testing.T) {
	_, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeSelect)

	var snap selection.Snapshot
	do(t, http.MethodPost, ts.URL+"/api/nodes/Boston/click", &snap)
	do(t, http.MethodPost, ts.URL+"/api/nodes/Boston/click", &snap)
	if snap.LastSelected != "Boston" || !snap.IsSelected("Boston") {
		t.Errorf("select mode: %+v", snap)
	}
}

func TestClickUnknownNode(t *testing.T) {
	_, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	var body errorResponse
	if code := do(t, http.MethodPost, ts.URL+"/api/nodes/Denver/click", &body); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
	if body.Code != errs.ErrCodeUnknownCity {
		t.Errorf("code = %q", body.Code)
	}

	body = errorResponse{}
	if code := do(t, http.MethodPost, ts.URL+"/api/nodes/Den%01ver/click", &body); code != http.StatusBadRequest {
		t.Errorf("control character id: status = %d, want 400", code)
	}
	if body.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestClickRejectedBySelection(t *testing.T) {
	s, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	// Boston stays rendered but drops out of the selection.
	s.Selection().Initialize([]string{"Austin", "Chicago"})
	before := s.Selection().Snapshot()

	var body errorResponse
	if code := do(t, http.MethodPost, ts.URL+"/api/nodes/Boston/click", &body); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
	if body.Code != errs.ErrCodeUnknownCity {
		t.Errorf("code = %q", body.Code)
	}
	after := s.Selection().Snapshot()
	if after.LastSelected != before.LastSelected || len(after.Selected) != len(before.Selected) {
		t.Errorf("selection changed: %+v -> %+v", before, after)
	}

	// A city the selection knows but the scene does not show.
	s.Selection().Initialize([]string{"Austin", "Denver"})
	body = errorResponse{}
	if code := do(t, http.MethodPost, ts.URL+"/api/nodes/Denver/click", &body); code != http.StatusNotFound {
		t.Errorf("unrendered city: status = %d, want 404", code)
	}
	if body.Code != errs.ErrCodeNotFound {
		t.Errorf("unrendered city: code = %q", body.Code)
	}
}

func TestToggleAll(t *testing.T) {
	_, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	var snap selection.Snapshot
	do(t, http.MethodPost, ts.URL+"/api/selection/toggle-all", &snap)
	if len(snap.Selected) != 3 || snap.LastSelected != "Chicago" {
		t.Errorf("select all: %+v", snap)
	}
	do(t, http.MethodPost, ts.URL+"/api/selection/toggle-all", &snap)
	if len(snap.Selected) != 0 || snap.LastSelected != "" {
		t.Errorf("clear all: %+v", snap)
	}
	do(t, http.MethodGet, ts.URL+"/api/selection", &snap)
	if len(snap.AllCities) != 3 {
		t.Errorf("AllCities = %v", snap.AllCities)
	}
}

func TestViewTransform(t *testing.T) {
	_, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		wantK  float64
	}{
		{"zoom in", http.MethodPost, "/api/view/zoom?factor=2&cx=0&cy=0", http.StatusOK, 2},
		{"zoom clamps", http.MethodPost, "/api/view/zoom?factor=100", http.StatusOK, render.DefaultMaxScale},
		{"reset", http.MethodPost, "/api/view/reset", http.StatusOK, 1},
		{"pan keeps scale", http.MethodPost, "/api/view/pan?dx=10&dy=-5", http.StatusOK, 1},
		{"zero factor", http.MethodPost, "/api/view/zoom?factor=0", http.StatusBadRequest, 0},
		{"bad number", http.MethodPost, "/api/view/pan?dx=left", http.StatusBadRequest, 0},
		{"nan pan", http.MethodPost, "/api/view/pan?dx=NaN&dy=Inf", http.StatusBadRequest, 0},
		{"infinite anchor", http.MethodPost, "/api/view/zoom?factor=2&cx=-Inf", http.StatusBadRequest, 0},
		{"infinite factor", http.MethodPost, "/api/view/zoom?factor=Inf", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr render.Transform
			code := do(t, tt.method, ts.URL+tt.path, &tr)
			if code != tt.status {
				t.Fatalf("status = %d, want %d", code, tt.status)
			}
			if code == http.StatusOK && tr.K != tt.wantK {
				t.Errorf("K = %v, want %v", tr.K, tt.wantK)
			}
		})
	}

	var sc render.Scene
	if code := do(t, http.MethodGet, ts.URL+"/api/scene", &sc); code != http.StatusOK {
		t.Fatalf("scene status after rejected input = %d", code)
	}
	if !sc.Transform.Finite() {
		t.Errorf("scene transform = %+v", sc.Transform)
	}
}

func TestReloadFailureKeepsSelection(t *testing.T) {
	src := &stubSource{g: stormGraph()}
	s, ts := newTestServer(t, src, bridge.ModeToggle)
	do(t, http.MethodPost, ts.URL+"/api/nodes/Boston/click", nil)

	src.err = errors.New("cluster unreachable")
	var body errorResponse
	if code := do(t, http.MethodPost, ts.URL+"/api/reload", &body); code != http.StatusInternalServerError {
		t.Errorf("status = %d", code)
	}

	if sc := s.Container().Surface().Scene(); len(sc.Nodes) != 0 {
		t.Errorf("scene still has %d nodes after failed reload", len(sc.Nodes))
	}
	if got := s.Selection().LastSelected(); got != "Boston" {
		t.Errorf("LastSelected = %q, want Boston", got)
	}

	src.err = nil
	var ok reloadResponse
	if code := do(t, http.MethodPost, ts.URL+"/api/reload", &ok); code != http.StatusOK || ok.Nodes != 3 {
		t.Errorf("reload: %d %+v", code, ok)
	}
}

func TestEvents(t *testing.T) {
	s, ts := newTestServer(t, &stubSource{g: stormGraph()}, bridge.ModeToggle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	var event string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			var tick tickEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &tick); err != nil {
				t.Fatal(err)
			}
			if event != "tick" || tick.Generation != s.Container().Surface().Generation() {
				t.Errorf("event %q generation %q", event, tick.Generation)
			}
			return
		}
	}
	t.Fatalf("stream ended without an event: %v", sc.Err())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"INVALID_INPUT", http.StatusBadRequest},
		{"UNKNOWN_CITY", http.StatusNotFound},
		{"CONTAINER_NOT_FOUND", http.StatusNotFound},
		{"DATA_INTEGRITY", http.StatusUnprocessableEntity},
		{"FETCH_FAILED", http.StatusBadGateway},
		{"TIMEOUT", http.StatusGatewayTimeout},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errs.Code(tt.code)); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
