package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/taskflow/pkg/errors"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/render/nodelink"
	"github.com/matzehuels/taskflow/pkg/session"
)

type createRequest struct {
	Tasks      []graph.Task    `json:"tasks"`
	Sections   []graph.Section `json:"sections,omitempty"`
	Strategy   string          `json:"strategy,omitempty"`
	Direction  string          `json:"direction,omitempty"`
	AutoLayout *bool           `json:"autoLayout,omitempty"`
}

type syncRequest struct {
	Tasks    []graph.Task    `json:"tasks"`
	Sections []graph.Section `json:"sections,omitempty"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type lagRequest struct {
	Lag *int `json:"lag"`
}

type autoLayoutRequest struct {
	Enabled bool `json:"enabled"`
}

type pruneRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateTasks(req.Tasks); err != nil {
		s.writeError(w, r, err)
		return
	}

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = s.strategy
	}
	st, err := s.strategyFor(strategyName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.opts
	if req.Direction != "" {
		dir, err := layout.ParseDirection(req.Direction)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Direction = dir
	}
	auto := s.auto
	if req.AutoLayout != nil {
		auto = *req.AutoLayout
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := r.Context()
	sess, report, err := session.FromTasks(ctx, req.Tasks, req.Sections,
		session.WithLogger(s.logger),
		session.WithStrategy(st),
		session.WithLayoutOptions(opts),
		session.WithAutoLayout(auto))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.save(ctx, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID(), "tasks", len(req.Tasks))

	view := newSessionView(sess)
	view.Report = newReportView(report)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		return jsonReply(http.StatusOK, newSessionView(sess)), false, nil
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if err := errs.ValidateSessionID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeStorage, err, "delete session %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncTasks(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateTasks(req.Tasks); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		report, err := sess.SyncTasks(r.Context(), req.Tasks, req.Sections)
		if err != nil {
			return nil, false, err
		}
		view := newSessionView(sess)
		view.Report = newReportView(report)
		return jsonReply(http.StatusOK, view), true, nil
	})
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	var req pruneRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		removed, err := sess.PruneNodes(r.Context(), req.IDs...)
		if err != nil {
			return nil, false, err
		}
		return jsonReply(http.StatusOK, map[string]any{"removedEdges": newEdgeViews(removed)}), true, nil
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		out, err := sess.Connect(r.Context(), req.Source, req.Target)
		if err != nil {
			return nil, false, err
		}
		if !out.Accepted() {
			return jsonReply(http.StatusUnprocessableEntity, rejectionView{Rejected: string(out.Rejected)}), false, nil
		}
		return jsonReply(http.StatusCreated, newEdgeView(out.Edge)), true, nil
	})
}

func (s *Server) handleRetype(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		out, err := sess.Retype(r.Context(), chi.URLParam(r, "eid"))
		if err != nil {
			return nil, false, err
		}
		if !out.Accepted() {
			return jsonReply(http.StatusUnprocessableEntity, rejectionView{Rejected: string(out.Rejected)}), false, nil
		}
		return jsonReply(http.StatusOK, newEdgeView(out.Edge)), true, nil
	})
}

func (s *Server) handleSetLag(w http.ResponseWriter, r *http.Request) {
	var req lagRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Lag == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "lag is required"))
		return
	}
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		e, err := sess.SetLag(r.Context(), chi.URLParam(r, "eid"), *req.Lag)
		if err != nil {
			return nil, false, err
		}
		return jsonReply(http.StatusOK, newEdgeView(e)), true, nil
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		if _, err := sess.Disconnect(r.Context(), chi.URLParam(r, "eid")); err != nil {
			return nil, false, err
		}
		return func(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }, true, nil
	})
}

func (s *Server) handleAutoLayout(w http.ResponseWriter, r *http.Request) {
	var req autoLayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		if err := sess.SetAutoLayout(r.Context(), req.Enabled); err != nil {
			return nil, false, err
		}
		return jsonReply(http.StatusOK, newSessionView(sess)), true, nil
	})
}

func (s *Server) handleRelayout(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		if err := sess.Relayout(r.Context()); err != nil {
			return nil, false, err
		}
		return jsonReply(http.StatusOK, newSessionView(sess)), true, nil
	})
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		return jsonReply(http.StatusOK, map[string][]string{"criticalPath": nonNil(sess.CriticalPath())}), false, nil
	})
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		return jsonReply(http.StatusOK, sess.Dependencies()), false, nil
	})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) (reply, bool, error) {
		dot := nodelink.ToDOT(sess.Graph(), nodelink.Options{
			Direction:    sess.LayoutOptions().Direction,
			CriticalPath: sess.CriticalPath(),
			Sections:     r.URL.Query().Get("sections") == "true",
			Detailed:     r.URL.Query().Get("detailed") == "true",
		})
		switch format := r.URL.Query().Get("format"); format {
		case "", "dot":
			return rawReply("text/vnd.graphviz; charset=utf-8", []byte(dot)), false, nil
		case "svg":
			svg, err := nodelink.RenderSVG(r.Context(), dot)
			if err != nil {
				return nil, false, errs.Wrap(errs.ErrCodeLayout, err, "render svg")
			}
			return rawReply("image/svg+xml", svg), false, nil
		default:
			return nil, false, errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want dot or svg)", format)
		}
	})
}

func validateTasks(tasks []graph.Task) error {
	for _, t := range tasks {
		if err := errs.ValidateTaskID(t.ID); err != nil {
			return err
		}
	}
	return nil
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body")
	}
	if decoder.More() {
		return errs.New(errs.ErrCodeInvalidInput, "unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch code := errs.GetCode(err); {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case code == errs.ErrCodeInvalidInput,
		code == errs.ErrCodeInvalidTaskID,
		code == errs.ErrCodeInvalidType,
		code == errs.ErrCodeInvalidConfig,
		code == errs.ErrCodeInvalidDirection,
		code == errs.ErrCodeInvalidStrategy,
		code == errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorView{
		Error: errs.UserMessage(err),
		Code:  string(errs.GetCode(err)),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
