package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Observer receives every state the manager moves into. Observers run
// synchronously and must not call back into the Manager.
type Observer func(State)

// Manager runs the request state machine. At most one request is
// authoritative: the one with the highest id. Results of older requests are
// dropped when they arrive.
type Manager struct {
	gen Generator
	log zerolog.Logger
	now func() time.Time

	mu        sync.Mutex
	state     State
	lastID    uint64
	observers []Observer

	// emitMu is taken before mu is released so observers see transitions in order.
	emitMu sync.Mutex
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the manager logger.
func WithManagerLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(gen Generator, opts ...ManagerOption) (*Manager, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	m := &Manager{gen: gen, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Subscribe registers o for all future transitions.
func (m *Manager) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() State {
	s := m.state
	s.Drafts = m.state.Drafts.clone()
	if m.state.Descriptor != nil {
		d := *m.state.Descriptor
		s.Descriptor = &d
	}
	return s
}

// Request is the handle of one accepted submission.
type Request struct {
	ID         uint64
	Descriptor JobDescriptor

	done    chan struct{}
	applied bool
}

// Done is closed once the request resolved, whether or not its result was applied.
func (r *Request) Done() <-chan struct{} { return r.done }

// Applied reports whether the result of the request changed the manager
// state. Only meaningful after Done is closed.
func (r *Request) Applied() bool {
	<-r.done
	return r.applied
}

// Wait blocks until the request resolved or ctx ends.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit validates raw and, if it is valid, makes it the authoritative request
// and starts generating all documents in the background. A validation failure
// returns ValidationErrors and leaves the state untouched.
//
// ctx only carries values to the provider calls; cancelling it does not stop
// them.
func (m *Manager) Submit(ctx context.Context, raw RawFields) (*Request, error) {
	d, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastID++
	req := &Request{ID: m.lastID, Descriptor: d, done: make(chan struct{})}
	desc := d
	m.state = State{
		Phase:      PhasePending,
		RequestID:  req.ID,
		Descriptor: &desc,
		StartedAt:  m.now(),
	}
	snap, observers := m.snapshot(), m.observersLocked()
	m.emitMu.Lock()
	m.mu.Unlock()

	m.log.Info().Uint64("request_id", req.ID).Str("position", d.Position).Str("company", d.Company).
		Str("content_type", string(d.ContentType)).Msg("request accepted")
	emit(observers, snap)
	m.emitMu.Unlock()

	go m.run(context.WithoutCancel(ctx), req)
	return req, nil
}

type result struct {
	t    DocumentType
	text string
	err  error
}

func (m *Manager) run(ctx context.Context, req *Request) {
	defer close(req.done)

	// buffered so late calls never block after a failure resolved the request
	results := make(chan result, len(DocumentTypes))
	for _, t := range DocumentTypes {
		go func(t DocumentType) {
			text, err := m.gen.Generate(ctx, t, req.Descriptor)
			results <- result{t: t, text: text, err: err}
		}(t)
	}

	drafts := make(DraftSet, len(DocumentTypes))
	for range DocumentTypes {
		r := <-results
		if r.err == nil && r.text == "" {
			r.err = fmt.Errorf("%w: empty %s", ErrInvalidResponse, r.t.Label())
		}
		if r.err != nil {
			req.applied = m.resolve(req.ID, State{Phase: PhaseFailed, Failure: classify(r.t, r.err)})
			return
		}
		drafts[r.t] = r.text
	}
	req.applied = m.resolve(req.ID, State{Phase: PhaseSucceeded, Drafts: drafts})
}

// resolve moves request id into its terminal phase if it is still the
// authoritative pending request.
func (m *Manager) resolve(id uint64, next State) bool {
	m.mu.Lock()
	if m.state.Phase != PhasePending || m.state.RequestID != id {
		current := m.state.RequestID
		m.mu.Unlock()
		m.log.Debug().Uint64("request_id", id).Uint64("current_request_id", current).
			Str("phase", next.Phase.String()).Msg("stale response discarded")
		return false
	}
	next.RequestID = id
	next.Descriptor = m.state.Descriptor
	next.StartedAt = m.state.StartedAt
	m.state = next
	snap, observers := m.snapshot(), m.observersLocked()
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()

	ev := m.log.Info()
	if next.Failure != nil {
		ev = m.log.Warn().Str("kind", string(next.Failure.Kind)).Str("document_type", string(next.Failure.DocumentType))
	}
	ev.Uint64("request_id", id).Str("phase", next.Phase.String()).
		Dur("elapsed", m.now().Sub(next.StartedAt)).Msg("request resolved")
	emit(observers, snap)
	return true
}

func (m *Manager) observersLocked() []Observer {
	return append([]Observer(nil), m.observers...)
}

func emit(observers []Observer, s State) {
	for _, o := range observers {
		o(s)
	}
}
