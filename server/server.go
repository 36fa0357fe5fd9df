package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nexletter/generator"
	"nexletter/notify"
	"nexletter/publisher"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Options configures the HTTP API.
type Options struct {
	Generator          generator.Generator
	Saver              generator.DraftSaver
	NewClipboard       func() generator.Clipboard
	Sinks              []notify.Sink
	NotifyWindow       time.Duration
	RateLimitPerMinute int
	Logger             zerolog.Logger
}

type Server struct {
	opts  Options
	store *sessionStore
	log   zerolog.Logger
}

type sessionEntry struct {
	sess     *generator.Session
	notifier *notify.Notifier
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *sessionStore) set(id string, e *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = e
}

func (s *sessionStore) get(id string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return e, ok
}

func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.sessions {
		e.notifier.Close()
	}
}

func New(opts Options) (*Server, error) {
	if opts.Generator == nil {
		return nil, errors.New("generator required")
	}
	if opts.NewClipboard == nil {
		opts.NewClipboard = func() generator.Clipboard { return &publisher.MemoryClipboard{} }
	}
	return &Server{opts: opts, store: newStore(), log: opts.Logger}, nil
}

// Close stops the notification timers of all sessions.
func (s *Server) Close() { s.store.closeAll() }

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		accessLog(s.log),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionGet)
			r.With(rateLimit(s.opts.RateLimitPerMinute, time.Minute)).Post("/requests", s.handleSubmit)
			r.Put("/selection", s.handleSelect)
			r.Post("/copy", s.handleCopy)
			r.Post("/save", s.handleSave)
		})
	})
	return r
}

func (s *Server) newSession() (*sessionEntry, error) {
	id := uuid.NewString()
	n := notify.New(
		notify.WithWindow(s.opts.NotifyWindow),
		notify.WithSinks(s.opts.Sinks...),
		notify.WithLogger(s.log),
	)
	sess, err := generator.NewSession(id, s.opts.Generator, generator.SessionDeps{
		Notifier:  n,
		Clipboard: s.opts.NewClipboard(),
		Saver:     s.opts.Saver,
		Logger:    s.log,
	})
	if err != nil {
		return nil, err
	}
	e := &sessionEntry{sess: sess, notifier: n}
	s.store.set(id, e)
	return e, nil
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*sessionEntry, bool) {
	e, ok := s.store.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrSessionNotFound.Error())
	}
	return e, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
