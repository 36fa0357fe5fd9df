package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 60 * time.Second

// Generator produces the text of one document. Agent is the production
// implementation; tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, t DocumentType, d JobDescriptor) (string, error)
}

// Agent builds the prompt for a document type, calls the LLM and classifies
// failures into *ProviderError.
type Agent struct {
	llm     LLMClient
	timeout time.Duration
	log     zerolog.Logger
}

// AgentOption customizes an Agent.
type AgentOption func(*Agent)

// WithTimeout overrides DefaultProviderTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) AgentOption {
	return func(a *Agent) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the agent logger.
func WithLogger(l zerolog.Logger) AgentOption {
	return func(a *Agent) { a.log = l }
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{llm: llm, timeout: DefaultProviderTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate returns the draft text for t. Every failure, including a panic in
// the client, comes back as a *ProviderError.
func (a *Agent) Generate(ctx context.Context, t DocumentType, d JobDescriptor) (text string, err error) {
	if !t.Valid() {
		return "", &ProviderError{Kind: KindUnknown, DocumentType: t, Err: fmt.Errorf("unsupported document type %q", t)}
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ProviderError{Kind: KindUnknown, DocumentType: t, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	start := time.Now()
	raw, err := a.llm.Complete(ctx, BuildPrompt(t, d))
	if err == nil {
		text, err = PostProcess(raw, t)
	}
	if err != nil {
		// a deadline hit inside the client may come back wrapped in a transport error
		if ctx.Err() == context.DeadlineExceeded && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		pe := classify(t, err)
		a.log.Warn().Err(err).Str("document_type", string(t)).Str("kind", string(pe.Kind)).
			Dur("elapsed", time.Since(start)).Msg("generation failed")
		return "", pe
	}
	a.log.Debug().Str("document_type", string(t)).Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).Msg("generation done")
	return text, nil
}

var _ Generator = (*Agent)(nil)
