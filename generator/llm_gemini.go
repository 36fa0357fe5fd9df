package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiLLM implements LLMClient on top of langchaingo's Google AI model.
type GeminiLLM struct {
	model llms.Model
}

// NewGeminiLLMFromConfig builds a Gemini client. BaseURL is ignored; the
// Google AI endpoint is fixed by the SDK.
func NewGeminiLLMFromConfig(ctx context.Context, cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; provide llm.api_key or GEMINI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewGeminiLLM(m), nil
}

// NewGeminiLLM wraps an existing langchaingo model.
func NewGeminiLLM(m llms.Model) *GeminiLLM {
	return &GeminiLLM{model: m}
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := g.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt.System),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt.User),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrInvalidResponse)
	}
	content := resp.Choices[0].Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: gemini returned empty content (stop_reason=%s)", ErrInvalidResponse, resp.Choices[0].StopReason)
	}
	return content, nil
}

var _ LLMClient = (*GeminiLLM)(nil)
