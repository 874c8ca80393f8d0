// Package obslog wraps a small custom slog.Handler for this project's
// console output, adapted from the console handler shape found in the
// example pack's logging package.
package obslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ConsoleHandler formats records as "time level msg key=val ...", one
// line per record.
type ConsoleHandler struct {
	opts   slog.HandlerOptions
	writer io.Writer
	mu     sync.Mutex
	attrs  []slog.Attr
}

// NewConsoleHandler builds a ConsoleHandler writing to w, filtering below
// opts.Level (nil defaults to slog.LevelInfo).
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ConsoleHandler{opts: *opts, writer: w}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", r.Time.Format("2006-01-02T15:04:05.000"), formatLevel(r.Level), r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	fmt.Fprintln(h.writer, b.String())
	return nil
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &ConsoleHandler{opts: h.opts, writer: h.writer}
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return next
}

func (h *ConsoleHandler) WithGroup(_ string) slog.Handler { return h }

func formatLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO "
	case level < slog.LevelError:
		return "WARN "
	default:
		return "ERROR"
	}
}

// New builds a slog.Logger over a ConsoleHandler at the given level,
// writing to w. The CLI uses it for one Info when a run starts and one
// when it completes; pkg/analysis.Driver does not log.
func New(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(NewConsoleHandler(w, &slog.HandlerOptions{Level: level}))
}
