package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Level grades the visual treatment a notification should receive.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier surfaces short, user-facing messages: the transient banner shown
// after an action succeeds or a request gives up. Implementations must accept
// calls from any goroutine.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// Func adapts a plain function to the Notifier interface.
type Func func(ctx context.Context, level Level, message string)

func (f Func) Notify(ctx context.Context, level Level, message string) {
	f(ctx, level, message)
}

// Discard drops every notification. Useful as a default for library callers
// that wire their own presentation later.
var Discard Notifier = Func(func(context.Context, Level, string) {})

// NewLogNotifier routes notifications to a slog.Logger, mapping LevelError to
// slog's error level and everything else to info. A nil logger falls back to
// slog.Default().
func NewLogNotifier(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return Func(func(ctx context.Context, level Level, message string) {
		if level == LevelError {
			logger.ErrorContext(ctx, message, "notice", string(level))
			return
		}
		logger.InfoContext(ctx, message, "notice", string(level))
	})
}

// Entry is one recorded notification.
type Entry struct {
	Level   Level
	Message string
}

// Recorder captures notifications for inspection in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Notify(_ context.Context, level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Reset clears the recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
