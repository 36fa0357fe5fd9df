package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type llmFunc func(ctx context.Context, p Prompt) (string, error)

func (f llmFunc) Complete(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }

func newTestAgent(t *testing.T, llm LLMClient, opts ...AgentOption) *Agent {
	t.Helper()
	a, err := NewAgent(llm, opts...)
	require.NoError(t, err)
	return a
}

func TestAgent_Success(t *testing.T) {
	var got Prompt
	a := newTestAgent(t, llmFunc(func(_ context.Context, p Prompt) (string, error) {
		got = p
		return "```\nSubject: Hi\n\nBody\n```", nil
	}))
	text, err := a.Generate(t.Context(), Email, testDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "Subject: Hi\n\nBody", text)
	assert.Equal(t, BuildPrompt(Email, testDescriptor()), got)
}

func TestAgent_Timeout(t *testing.T) {
	a := newTestAgent(t, llmFunc(func(ctx context.Context, _ Prompt) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), WithTimeout(20*time.Millisecond))

	_, err := a.Generate(t.Context(), LinkedInMessage, testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindTimeout, pe.Kind)
	assert.Equal(t, LinkedInMessage, pe.DocumentType)
}

func TestAgent_TimeoutWrappedByTransport(t *testing.T) {
	a := newTestAgent(t, llmFunc(func(ctx context.Context, _ Prompt) (string, error) {
		<-ctx.Done()
		return "", errors.New("net/http: request canceled")
	}), WithTimeout(20*time.Millisecond))

	_, err := a.Generate(t.Context(), CoverLetter, testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindTimeout, pe.Kind)
}

func TestAgent_EmptyOutput(t *testing.T) {
	a := newTestAgent(t, llmFunc(func(context.Context, Prompt) (string, error) { return "  \n", nil }))
	_, err := a.Generate(t.Context(), Email, testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindInvalidResponse, pe.Kind)
}

func TestAgent_Panic(t *testing.T) {
	a := newTestAgent(t, llmFunc(func(context.Context, Prompt) (string, error) { panic("boom") }))
	_, err := a.Generate(t.Context(), Email, testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindUnknown, pe.Kind)
	assert.Contains(t, pe.Error(), "boom")
}

func TestAgent_UnknownType(t *testing.T) {
	a := newTestAgent(t, MockLLM{})
	_, err := a.Generate(t.Context(), DocumentType("tweet"), testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindUnknown, pe.Kind)
}

func TestNewAgent_RequiresLLM(t *testing.T) {
	_, err := NewAgent(nil)
	assert.Error(t, err)
}

type recorded struct {
	mu       sync.Mutex
	requests []map[string]any
}

func (r *recorded) all() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.requests...)
}

func openAIServer(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(raw, &req)
		rec.mu.Lock()
		rec.requests = append(rec.requests, req)
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestOpenAILLM_Complete(t *testing.T) {
	srv, requests := openAIServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hi Sam, quick question"}}]
	}`)
	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	text, err := newTestAgent(t, llm).Generate(t.Context(), LinkedInMessage, testDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "Hi Sam, quick question", text)

	reqs := requests.all()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, "gpt-4o-mini", req["model"])
	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenAILLM_RateLimited(t *testing.T) {
	srv, requests := openAIServer(t, http.StatusTooManyRequests, `{"error": {"message": "slow down", "type": "rate_limit"}}`)
	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "test", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	_, err = newTestAgent(t, llm).Generate(t.Context(), Email, testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindRateLimited, pe.Kind)
	assert.Len(t, requests.all(), 1, "no retries")
}

func TestOpenAILLM_NoChoices(t *testing.T) {
	srv, _ := openAIServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`)
	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "test", Model: "m", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	_, err = llm.Complete(t.Context(), BuildPrompt(Email, testDescriptor()))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestNewOpenAILLMFromConfig_Validation(t *testing.T) {
	_, err := NewOpenAILLMFromConfig(nil)
	assert.Error(t, err)
	_, err = NewOpenAILLMFromConfig(&LLMSettings{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAILLMFromConfig(&LLMSettings{APIKey: "k"})
	assert.Error(t, err)
}

type fakeModel struct {
	messages []llms.MessageContent
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGeminiLLM_Complete(t *testing.T) {
	m := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "Dear Hiring Manager,"}}}}
	text, err := NewGeminiLLM(m).Complete(t.Context(), BuildPrompt(CoverLetter, testDescriptor()))
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,", text)

	require.Len(t, m.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
}

func TestGeminiLLM_Errors(t *testing.T) {
	empty := &fakeModel{resp: &llms.ContentResponse{}}
	_, err := NewGeminiLLM(empty).Complete(t.Context(), BuildPrompt(Email, testDescriptor()))
	assert.ErrorIs(t, err, ErrInvalidResponse)

	quota := &fakeModel{err: errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")}
	_, err = newTestAgent(t, NewGeminiLLM(quota)).Generate(t.Context(), Email, testDescriptor())
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindRateLimited, pe.Kind)
}
