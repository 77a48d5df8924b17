package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/buildinfo"
	"github.com/canopyviz/canopy/pkg/config"
	canopyerrors "github.com/canopyviz/canopy/pkg/errors"
	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/observability"
	"github.com/canopyviz/canopy/pkg/pipeline"
	"github.com/canopyviz/canopy/pkg/reconcile"
	"github.com/canopyviz/canopy/pkg/source/markdown"
	"github.com/canopyviz/canopy/pkg/store"
)

// serveCommand creates the serve command: watch a workspace and expose the
// converged surface over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Serve the live graph of a workspace over HTTP",
		Long: `Serve watches the workspace like watch does and exposes the converged
state over HTTP:

  GET  /healthz    liveness and version
  GET  /graph      the seeded graph snapshot
  GET  /elements   the flat render elements of the surface
  GET  /positions  the current position map
  POST /delta      apply a single-node upsert or delete

The workspace snapshot is persisted through the configured store so
positions survive restarts even without a cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			workspace, err := workspacePath(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.LoadWorkspace(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			srv := newAPIServer(c, runner, st, workspace)
			if err := srv.bootstrap(ctx); err != nil {
				return err
			}

			watcher, err := markdown.NewWatcher(workspace, c.Logger)
			if err != nil {
				return err
			}
			defer watcher.Close()
			watcher.SetDebounce(cfg.Debounce())

			go func() { _ = watcher.Run(ctx) }()
			go srv.consume(ctx, watcher)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			printInfo("Serving workspace")
			printKeyValue("Workspace", workspace)
			printKeyValue("Address", addr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from canopy.toml, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the position cache")

	return cmd
}

// =============================================================================
// apiServer
// =============================================================================

// apiServer owns the surface the HTTP handlers read and the watcher converges.
type apiServer struct {
	cli       *CLI
	runner    *pipeline.Runner
	store     store.Store
	workspace string

	mu      sync.RWMutex
	surface *reconcile.MemorySurface
	applier *reconcile.DeltaApplier
	graph   graph.Graph
}

func newAPIServer(c *CLI, runner *pipeline.Runner, st store.Store, workspace string) *apiServer {
	s := &apiServer{
		cli:       c,
		runner:    runner,
		store:     st,
		workspace: workspace,
		surface:   reconcile.NewMemorySurface(),
		graph:     graph.New(),
	}
	s.applier = reconcile.NewDeltaApplier(s.surface)
	s.applier.OnNodeDeleted = func(id graph.NodeID) {
		c.Logger.Info("node removed", "node", id)
	}
	return s
}

// bootstrap runs the first sync, restoring positions from the store when the
// cache has nothing.
func (s *apiServer) bootstrap(ctx context.Context) error {
	g, err := markdown.Parse(s.workspace)
	if err != nil {
		return err
	}

	if ws, ok, err := s.store.Load(ctx, s.workspace); err == nil && ok {
		g = graph.ApplyPositions(g, ws.PositionMap())
	}

	return s.syncSnapshot(ctx, g)
}

// syncSnapshot converges the surface onto one snapshot and persists the
// workspace record.
func (s *apiServer) syncSnapshot(ctx context.Context, g graph.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.runner.Sync(ctx, g, s.surface, pipeline.Options{
		Workspace: s.workspace,
		Logger:    s.cli.Logger,
	})
	if err != nil {
		return err
	}
	s.graph = result.Graph

	if err := s.store.Save(ctx, store.NewWorkspace(s.workspace, result.Graph)); err != nil {
		s.cli.Logger.Warn("workspace persist failed", "error", err)
	}
	return nil
}

// consume applies watcher events until ctx is cancelled.
func (s *apiServer) consume(ctx context.Context, watcher *markdown.Watcher) {
	for ev := range watcher.Events() {
		if ev.Snapshot != nil {
			if err := s.syncSnapshot(ctx, *ev.Snapshot); err != nil {
				s.cli.Logger.Error("snapshot sync failed", "error", err)
			}
			continue
		}
		s.mu.Lock()
		s.applier.Apply(ev.Delta)
		s.mu.Unlock()
	}
}

// routes builds the HTTP router.
func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/elements", s.handleElements)
	r.Get("/positions", s.handlePositions)
	r.Post("/delta", s.handleDelta)

	return r
}

// observe reports request events to the registered HTTP hooks.
func (s *apiServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *apiServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	doc := graph.ToDocument(s.graph)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *apiServer) handleElements(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	elements := s.surface.Elements()
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, elements)
}

func (s *apiServer) handlePositions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	positions := graph.PositionsOf(s.graph)
	s.mu.RUnlock()

	out := make(map[string]graph.Position, len(positions))
	for id, pos := range positions {
		out[string(id)] = pos
	}
	writeJSON(w, http.StatusOK, out)
}

// deltaRequest is the POST /delta body.
type deltaRequest struct {
	Op   string      `json:"op"` // "upsert" or "delete"
	Node *graph.Node `json:"node,omitempty"`
	ID   string      `json:"id,omitempty"`
}

func (s *apiServer) handleDelta(w http.ResponseWriter, r *http.Request) {
	var req deltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canopyerrors.New(canopyerrors.ErrCodeInvalidDelta, "invalid request body"))
		return
	}

	eventID := uuid.New().String()

	var delta reconcile.Delta
	switch req.Op {
	case "upsert":
		if req.Node == nil {
			writeError(w, http.StatusBadRequest, canopyerrors.New(canopyerrors.ErrCodeInvalidDelta, "upsert requires a node"))
			return
		}
		if err := canopyerrors.ValidateNodeID(string(req.Node.ID)); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := canopyerrors.ValidateColor(req.Node.Color); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		delta = reconcile.UpsertNode{Node: *req.Node}
	case "delete":
		if err := canopyerrors.ValidateNodeID(req.ID); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		delta = reconcile.DeleteNode{NodeID: graph.NodeID(req.ID)}
	default:
		writeError(w, http.StatusBadRequest, canopyerrors.New(canopyerrors.ErrCodeInvalidDelta, "invalid op: %q", req.Op))
		return
	}

	s.mu.Lock()
	s.applier.Apply(delta)
	s.mu.Unlock()

	s.cli.Logger.Info("delta applied", "event_id", eventID, "op", req.Op)
	writeJSON(w, http.StatusOK, map[string]string{"event_id": eventID})
}

// =============================================================================
// Response helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"code":  string(canopyerrors.GetCode(err)),
		"error": canopyerrors.UserMessage(err),
	})
}
