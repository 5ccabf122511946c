// Package notify delivers short user-facing messages (toasts in a browser,
// status lines on a terminal). Controllers depend only on the Notifier
// interface.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Kind is the visual class of a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier shows a message to the user. Implementations must be safe for
// concurrent use and must not block on the user.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Func adapts a plain function to Notifier.
type Func func(message string, kind Kind)

func (f Func) Notify(message string, kind Kind) { f(message, kind) }

// Discard drops every message.
var Discard Notifier = Func(func(string, Kind) {})

// ---------------------------------------------------------------------------
// Log notifier
// ---------------------------------------------------------------------------

// LogNotifier records notifications as zerolog events. Errors are logged at
// warn level since they are already handled by the caller.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) Notify(message string, kind Kind) {
	ev := n.logger.Info()
	if kind == KindError {
		ev = n.logger.Warn()
	}
	ev.Str("kind", string(kind)).Msg(message)
}

// ---------------------------------------------------------------------------
// Writer notifier
// ---------------------------------------------------------------------------

var markers = map[Kind]string{
	KindInfo:    "i",
	KindSuccess: "✓",
	KindError:   "✗",
}

// WriterNotifier prints one line per notification, e.g. "✓ Doctor added".
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(message string, kind Kind) {
	marker, ok := markers[kind]
	if !ok {
		marker = "-"
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", marker, message)
}

// Multi fans a notification out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(message string, kind Kind) {
		for _, n := range notifiers {
			n.Notify(message, kind)
		}
	})
}

// ---------------------------------------------------------------------------
// Recorder (test double)
// ---------------------------------------------------------------------------

// Call records a single notification.
type Call struct {
	Message string
	Kind    Kind
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Notify(message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Message: message, Kind: kind})
}

// Calls returns a copy of recorded notifications.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset forgets recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
