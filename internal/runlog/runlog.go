// Package runlog provides a run-scoped logger. Each pipeline run creates one
// Logger; entries fan out to the process log and into a per-run buffer that
// is returned with the final result, so a failed run carries its own log
// tail and a successful run its warnings. No module-level state.
package runlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// Entry is one recorded log line.
type Entry struct {
	At      time.Time `json:"at"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// Logger wraps slog with per-run entry collection.
type Logger struct {
	*slog.Logger
	rec *recorder
}

// New creates a run-scoped logger fanning out to base. A nil base collects
// entries without forwarding, which tests rely on.
func New(base slog.Handler, attrs ...slog.Attr) *Logger {
	rec := &recorder{}
	var h slog.Handler = rec
	if base != nil {
		h = slogmulti.Fanout(base, rec)
	}
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}
	return &Logger{Logger: slog.New(h), rec: rec}
}

// Warnf records a formatted warning. Warnings are reported separately in the
// run result.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Entries returns a copy of everything recorded so far.
func (l *Logger) Entries() []Entry {
	return l.rec.snapshot(slog.LevelDebug)
}

// Warnings returns the messages recorded at warn level or above.
func (l *Logger) Warnings() []string {
	entries := l.rec.snapshot(slog.LevelWarn)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

type recorded struct {
	entry Entry
	level slog.Level
}

type recorder struct {
	mu      sync.Mutex
	entries []recorded
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	msg := rec.Message
	rec.Attrs(func(a slog.Attr) bool {
		msg += " " + a.String()
		return true
	})
	at := rec.Time
	if at.IsZero() {
		at = time.Now()
	}
	r.mu.Lock()
	r.entries = append(r.entries, recorded{
		entry: Entry{At: at, Level: rec.Level.String(), Message: msg},
		level: rec.Level,
	})
	r.mu.Unlock()
	return nil
}

// Attr and group scoping are not tracked in the buffer; the fanned-out base
// handler still renders them.
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func (r *recorder) snapshot(min slog.Level) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.level >= min {
			out = append(out, e.entry)
		}
	}
	return out
}
