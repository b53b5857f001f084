// Package server exposes task dependency sessions over HTTP.
//
// Each request loads the session snapshot from the store, applies one
// operation through the session's Edge Mutation API and saves the snapshot
// back. Requests are serialized within one process.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/taskflow/pkg/buildinfo"
	"github.com/matzehuels/taskflow/pkg/cache"
	errs "github.com/matzehuels/taskflow/pkg/errors"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/session"
)

// Options configures a Server.
type Options struct {
	Store  session.Store
	Logger *log.Logger

	// Strategy is the layout strategy name for new sessions.
	Strategy      string
	LayoutOptions layout.Options
	AutoLayout    bool

	// Cache, when set, memoizes layouts across requests.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Server handles the session API.
type Server struct {
	store    session.Store
	logger   *log.Logger
	strategy string
	opts     layout.Options
	auto     bool
	cache    cache.Cache
	cacheTTL time.Duration

	mu sync.Mutex
}

// New validates options and creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "server needs a session store")
	}
	if _, err := layout.ByName(opts.Strategy); err != nil {
		return nil, err
	}
	if opts.LayoutOptions == (layout.Options{}) {
		opts.LayoutOptions = layout.DefaultOptions()
	}
	if err := opts.LayoutOptions.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:    opts.Store,
		logger:   logger,
		strategy: opts.Strategy,
		opts:     opts.LayoutOptions,
		auto:     opts.AutoLayout,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Resolve())
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Put("/tasks", s.handleSyncTasks)
			r.Post("/prune", s.handlePrune)
			r.Post("/edges", s.handleConnect)
			r.Post("/edges/{eid}/retype", s.handleRetype)
			r.Patch("/edges/{eid}", s.handleSetLag)
			r.Delete("/edges/{eid}", s.handleDisconnect)
			r.Put("/auto-layout", s.handleAutoLayout)
			r.Post("/layout", s.handleRelayout)
			r.Get("/critical-path", s.handleCriticalPath)
			r.Get("/dependencies", s.handleDependencies)
			r.Get("/dot", s.handleDOT)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// strategyFor returns the named strategy, wrapped in the layout cache when
// one is configured.
func (s *Server) strategyFor(name string) (layout.Strategy, error) {
	st, err := layout.ByName(name)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		st = layout.Cached{Inner: st, Cache: s.cache, TTL: s.cacheTTL}
	}
	return st, nil
}

// load restores a session. The caller must hold s.mu.
func (s *Server) load(ctx context.Context, id string) (*session.Session, error) {
	if err := errs.ValidateSessionID(id); err != nil {
		return nil, err
	}
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "load session %s", id)
	}
	if snap == nil {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %s not found", id)
	}
	st, err := s.strategyFor(snap.Strategy)
	if err != nil {
		return nil, err
	}
	return session.Restore(ctx, snap, session.WithLogger(s.logger), session.WithStrategy(st))
}

// save persists a session. The caller must hold s.mu.
func (s *Server) save(ctx context.Context, sess *session.Session) error {
	if err := s.store.Set(ctx, sess.Snapshot()); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "save session %s", sess.ID())
	}
	return nil
}

// reply writes a response once the session has been saved.
type reply func(w http.ResponseWriter)

func jsonReply(status int, payload any) reply {
	return func(w http.ResponseWriter) { writeJSON(w, status, payload) }
}

func rawReply(contentType string, body []byte) reply {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// withSession runs fn on the session named in the URL, saves the session
// when fn reports a change and then sends fn's reply.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (reply, bool, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := r.Context()
	sess, err := s.load(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	send, changed, err := fn(sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if changed {
		if err := s.save(ctx, sess); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	send(w)
}
