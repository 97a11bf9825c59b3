// Package server hosts a live storm graph over HTTP.
//
// One render container shows the graph while its force simulation runs.
// Browsers load the page at "/", follow simulation ticks over server-sent
// events and post clicks, zooms and pans back to the API. Clicks go through
// the interaction bridge into the selection state, whose changes recolour
// the graph.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stormgraph/pkg/bridge"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/pipeline"
	"github.com/matzehuels/stormgraph/pkg/render"
	"github.com/matzehuels/stormgraph/pkg/selection"
	"github.com/matzehuels/stormgraph/pkg/source"
)

// ContainerID names the single display container the server renders into.
const ContainerID = "graph"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr     string
	Mode     bridge.Mode
	Render   render.Options
	Pipeline pipeline.Options
	Logger   *log.Logger
}

// Server serves one live storm graph.
type Server struct {
	opts   Options
	logger *log.Logger
	runner *pipeline.Runner
	src    source.Source

	host      *render.Host
	container *render.Container
	state     *selection.State
	bridge    *bridge.Bridge
	events    *hub
	unwatch   func()

	reloadMu sync.Mutex
	router   chi.Router
}

// New creates a server that loads graphs from src through runner. Call
// [Server.Reload] or [Server.Run] to fetch the first graph.
func New(runner *pipeline.Runner, src source.Source, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = runner.Logger
	}
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8080"
	}
	opts.Render.SetDefaults()

	host := render.NewHost(opts.Render, opts.Logger)
	c, err := host.AddContainer(ContainerID, 0, 0)
	if err != nil {
		host.Close()
		return nil, err
	}

	state := selection.New()
	s := &Server{
		opts:      opts,
		logger:    opts.Logger,
		runner:    runner,
		src:       src,
		host:      host,
		container: c,
		state:     state,
		bridge:    bridge.New(state, opts.Mode, bridge.WithLogger(opts.Logger)),
		events:    newHub(),
	}
	s.bridge.Attach(c)
	s.unwatch = c.Watch(func(render.Frame) { s.events.broadcast() })
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/graph.svg", s.handleSVG)
		r.Get("/graph.png", s.handlePNG)
		r.Get("/scene", s.handleScene)
		r.Get("/events", s.serveEvents)
		r.Post("/nodes/{id}/click", s.handleClick)
		r.Get("/selection", s.handleSelection)
		r.Post("/selection/toggle-all", s.handleToggleAll)
		r.Post("/view/zoom", s.handleZoom)
		r.Post("/view/pan", s.handlePan)
		r.Post("/view/reset", s.handleReset)
		r.Post("/reload", s.handleReload)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Container returns the display container.
func (s *Server) Container() *render.Container { return s.container }

// Selection returns the selection state.
func (s *Server) Selection() *selection.State { return s.state }

// Reload fetches the graph again and renders it. A failed fetch leaves an
// empty graph on screen and the selection as it was.
func (s *Server) Reload(ctx context.Context, refresh bool) (graph.Graph, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	opts := s.opts.Pipeline
	opts.Refresh = refresh
	return s.runner.Load(ctx, s.src, pipeline.Session{
		Host:        s.host,
		Container:   ContainerID,
		State:       s.state,
		OnNodeClick: s.bridge.OnNodeClick,
	}, opts)
}

// Run loads the first graph and serves until ctx is cancelled. File
// sources are watched and reloaded on change.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.Reload(ctx, false); err != nil {
		s.logger.Warn("initial load failed", "err", err)
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving storm graph", "addr", "http://"+s.opts.Addr, "source", s.src.Name(), "mode", s.opts.Mode)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.events.close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if f, ok := s.src.(*source.File); ok {
		g.Go(func() error {
			return f.Watch(ctx, func(graph.Graph, error) {
				s.logger.Info("graph file changed, reloading", "path", f.Path())
				if _, err := s.Reload(ctx, true); err != nil {
					s.logger.Warn("reload failed", "err", err)
				}
			})
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the simulation and detaches the selection.
func (s *Server) Close() {
	s.unwatch()
	s.bridge.Close()
	s.events.close()
	s.host.Close()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/api/events" {
			return
		}
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
