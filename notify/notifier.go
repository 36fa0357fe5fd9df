// Package notify surfaces terminal events of the draft workflow to the user.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DisplayWindow is how long an event stays visible.
const DisplayWindow = 3 * time.Second

// Kind is the severity of an event.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Event is a transient notification.
type Event struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink forwards events somewhere outside the process.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// Notifier keeps at most one visible event. A newer event replaces the
// current one and restarts the display window.
type Notifier struct {
	window time.Duration
	sinks  []Sink
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *Event
	seq     uint64
	timer   *time.Timer
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithWindow overrides DisplayWindow. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.window = d
		}
	}
}

// WithSinks adds forwarders that receive every event.
func WithSinks(sinks ...Sink) Option {
	return func(n *Notifier) { n.sinks = append(n.sinks, sinks...) }
}

// WithLogger sets the notifier logger.
func WithLogger(l zerolog.Logger) Option {
	return func(n *Notifier) { n.log = l }
}

func New(opts ...Option) *Notifier {
	n := &Notifier{window: DisplayWindow, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Success shows a success event.
func (n *Notifier) Success(msg string) { n.Notify(KindSuccess, msg) }

// Error shows an error event.
func (n *Notifier) Error(msg string) { n.Notify(KindError, msg) }

// Notify replaces the visible event and forwards it to the sinks.
func (n *Notifier) Notify(kind Kind, msg string) {
	ev := Event{Kind: kind, Message: msg, At: n.now()}

	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.current = &ev
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.window, func() { n.expire(seq) })
	sinks := n.sinks
	n.mu.Unlock()

	for _, s := range sinks {
		go n.deliver(s, ev)
	}
}

func (n *Notifier) deliver(s Sink, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Deliver(ctx, ev); err != nil {
		n.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("notification sink failed")
	}
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seq == seq {
		n.current = nil
	}
}

// Current returns the visible event, if any.
func (n *Notifier) Current() (Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.now().Sub(n.current.At) >= n.window {
		return Event{}, false
	}
	return *n.current, true
}

// Close stops the pending expiry timer.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
}
