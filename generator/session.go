package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoDrafts is returned by Copy and Save before any request succeeded.
var ErrNoDrafts = errors.New("no drafts generated yet")

// Notifier shows transient success and error messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Clipboard receives text the user wants to paste elsewhere.
type Clipboard interface {
	Copy(text string) error
}

// DraftSaver persists a finished draft set with the job it was written for.
type DraftSaver interface {
	Save(ctx context.Context, drafts DraftSet, d JobDescriptor) error
}

const (
	msgGenerated = "Documents generated successfully!"
	msgCopied    = "Copied to clipboard!"
	msgCopyFail  = "Could not copy to clipboard."
	msgSaved     = "Your documents have been saved successfully!"
	msgSaveFail  = "Failed to save your documents. Please try again."
)

// SessionDeps are the side-effect collaborators of a session. Any of them may
// be nil.
type SessionDeps struct {
	Notifier  Notifier
	Clipboard Clipboard
	Saver     DraftSaver
	Logger    zerolog.Logger
}

// Session is one user's workspace: a request manager, the collection showing
// its last result and the connectors the UI triggers.
type Session struct {
	ID        string
	CreatedAt time.Time

	manager   *Manager
	drafts    *Collection
	notifier  Notifier
	clipboard Clipboard
	saver     DraftSaver
	log       zerolog.Logger

	mu      sync.Mutex
	history []Turn
}

// NewSession wires a fresh manager to a collection, the notifier and the
// session history.
func NewSession(id string, gen Generator, deps SessionDeps) (*Session, error) {
	log := deps.Logger.With().Str("session_id", id).Logger()
	m, err := NewManager(gen, WithManagerLogger(log))
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		manager:   m,
		drafts:    NewCollection(),
		notifier:  deps.Notifier,
		clipboard: deps.Clipboard,
		saver:     deps.Saver,
		log:       log,
	}
	m.Subscribe(s.drafts.Observe)
	m.Subscribe(s.observe)
	return s, nil
}

func (s *Session) observe(st State) {
	if st.Phase != PhaseSucceeded && st.Phase != PhaseFailed {
		return
	}
	turn := Turn{RequestID: st.RequestID, Phase: st.Phase, CreatedAt: time.Now()}
	if st.Descriptor != nil {
		turn.Descriptor = *st.Descriptor
	}
	if st.Failure != nil {
		turn.FailureKind = st.Failure.Kind
	}
	s.mu.Lock()
	s.history = append(s.history, turn)
	s.mu.Unlock()

	if s.notifier == nil {
		return
	}
	if st.Phase == PhaseSucceeded {
		s.notifier.Success(msgGenerated)
	} else {
		s.notifier.Error(GenericFailureMessage)
	}
}

// Submit starts a new authoritative request.
func (s *Session) Submit(ctx context.Context, raw RawFields) (*Request, error) {
	return s.manager.Submit(ctx, raw)
}

// State returns the request manager state.
func (s *Session) State() State { return s.manager.State() }

// Drafts is the collection of the last successful request.
func (s *Session) Drafts() *Collection { return s.drafts }

// Select moves the displayed document.
func (s *Session) Select(t DocumentType) bool { return s.drafts.Select(t) }

// History lists resolved requests, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// Copy puts the draft of type t on the clipboard and reports the outcome.
func (s *Session) Copy(t DocumentType) error {
	text, ok := s.drafts.Get(t)
	if !ok {
		return ErrNoDrafts
	}
	if s.clipboard == nil {
		return errors.New("clipboard is not configured")
	}
	if err := s.clipboard.Copy(text); err != nil {
		s.log.Warn().Err(err).Str("document_type", string(t)).Msg("copy failed")
		s.notifyError(msgCopyFail)
		return err
	}
	s.notifySuccess(msgCopied)
	return nil
}

// Save persists the current drafts and reports the outcome.
func (s *Session) Save(ctx context.Context) error {
	drafts, d, _, ok := s.drafts.Drafts()
	if !ok {
		return ErrNoDrafts
	}
	if s.saver == nil {
		return errors.New("storage is not configured")
	}
	if err := s.saver.Save(ctx, drafts, d); err != nil {
		s.log.Error().Err(err).Msg("save failed")
		s.notifyError(msgSaveFail)
		return err
	}
	s.notifySuccess(msgSaved)
	return nil
}

func (s *Session) notifySuccess(msg string) {
	if s.notifier != nil {
		s.notifier.Success(msg)
	}
}

func (s *Session) notifyError(msg string) {
	if s.notifier != nil {
		s.notifier.Error(msg)
	}
}
