package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	openai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"invalid", fmt.Errorf("%w: empty", ErrInvalidResponse), KindInvalidResponse},
		{"openai 429", &openai.Error{StatusCode: 429}, KindRateLimited},
		{"openai 504", &openai.Error{StatusCode: 504}, KindTimeout},
		{"openai 500", &openai.Error{StatusCode: 500}, KindUnknown},
		{"gemini quota", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"), KindRateLimited},
		{"other", errors.New("connection reset by peer"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kindOf(tt.err))
		})
	}
}

func TestClassify_KeepsProviderError(t *testing.T) {
	orig := &ProviderError{Kind: KindRateLimited, Err: errors.New("slow down")}
	pe := classify(Email, fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, pe)
	assert.Equal(t, Email, pe.DocumentType)
}

func TestProviderError_JSONHidesCause(t *testing.T) {
	pe := &ProviderError{Kind: KindUnknown, DocumentType: CoverLetter, Err: errors.New("api key sk-secret rejected")}
	b, err := json.Marshal(pe)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "sk-secret")
	assert.JSONEq(t, `{"kind":"unknown","documentType":"coverLetter","message":"Failed to generate content. Please try again."}`, string(b))
	assert.Contains(t, pe.Error(), "api key")
}
