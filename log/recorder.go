package log

import (
	"fmt"
	"sync"
)

// Entry is a single message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Attrs   map[string]any
}

// Recorder is a Logger that keeps every message in memory. It is used by
// tests that assert on skip reasons and warnings.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []any
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) Debug(msg string, args ...any) { r.record("DEBUG", msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record("INFO", msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record("WARN", msg, args) }
func (r *Recorder) Error(msg string, args ...any) { r.record("ERROR", msg, args) }

// With returns a Recorder sharing the same entry list with extra attributes.
func (r *Recorder) With(args ...any) Logger {
	attrs := make([]any, 0, len(r.attrs)+len(args))
	attrs = append(attrs, r.attrs...)
	attrs = append(attrs, args...)
	return &Recorder{mu: r.mu, entries: r.entries, attrs: attrs}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// Messages returns recorded messages formatted as "LEVEL: message".
func (r *Recorder) Messages() []string {
	entries := r.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s: %s", e.Level, e.Message))
	}
	return out
}

func (r *Recorder) record(level, msg string, args []any) {
	attrs := make(map[string]any)
	all := append(append([]any{}, r.attrs...), args...)
	for i := 0; i+1 < len(all); i += 2 {
		if key, ok := all[i].(string); ok {
			attrs[key] = all[i+1]
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, Entry{Level: level, Message: msg, Attrs: attrs})
}
