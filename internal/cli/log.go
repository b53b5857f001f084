// Package cli implements the taskflow command-line interface.
//
// Commands read task documents (JSON records with id, dependencies and
// scheduling payload), build the dependency graph and either analyze it,
// lay it out or serve it over HTTP. The CLI is built using cobra and logs
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute node positions and write them as JSON
//   - critical: Print the longest dependency chain
//   - check: Report missing, skipped, cyclic and redundant dependencies
//   - dot: Export the graph as Graphviz DOT or SVG
//   - serve: Run the session HTTP API
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. In verbose
// mode session, cache and store events are logged as well.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskflow/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Laid out 42 tasks (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks writes observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetSessionHooks(h)
	observability.SetCacheHooks(h)
	observability.SetStoreHooks(h)
}

func (h *logHooks) OnMutation(_ context.Context, op, source, target, rejected string) {
	if rejected != "" {
		h.logger.Debug("mutation rejected", "op", op, "source", source, "target", target, "reason", rejected)
		return
	}
	h.logger.Debug("mutation", "op", op, "source", source, "target", target)
}

func (h *logHooks) OnLayout(_ context.Context, strategy string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "strategy", strategy, "nodes", nodeCount, "err", err)
		return
	}
	h.logger.Debug("layout", "strategy", strategy, "nodes", nodeCount, "elapsed", d)
}

func (h *logHooks) OnCriticalPath(_ context.Context, length int) {
	h.logger.Debug("critical path", "length", length)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnLoad(_ context.Context, backend, id string, d time.Duration, err error) {
	h.logger.Debug("session load", "backend", backend, "session", id, "elapsed", d, "err", err)
}

func (h *logHooks) OnSave(_ context.Context, backend, id string, d time.Duration, err error) {
	h.logger.Debug("session save", "backend", backend, "session", id, "elapsed", d, "err", err)
}
