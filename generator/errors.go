package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	openai "github.com/openai/openai-go"
)

// ValidationError describes one violated constraint of a form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every violation found in a submission.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "invalid job descriptor: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) sorted() ValidationErrors {
	sort.SliceStable(v, func(i, j int) bool {
		if v[i].Field != v[j].Field {
			return v[i].Field < v[j].Field
		}
		return v[i].Message < v[j].Message
	})
	return v
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindRateLimited     ErrorKind = "rate_limited"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindUnknown         ErrorKind = "unknown"
)

// GenericFailureMessage is what users see for any provider failure.
const GenericFailureMessage = "Failed to generate content. Please try again."

// ErrInvalidResponse marks a provider answer that could not be used as a draft.
var ErrInvalidResponse = errors.New("invalid provider response")

// ProviderError is the classified failure of one generation call.
type ProviderError struct {
	Kind         ErrorKind
	DocumentType DocumentType
	Err          error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s (%s)", e.Kind, e.DocumentType)
	}
	return fmt.Sprintf("provider %s (%s): %v", e.Kind, e.DocumentType, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MarshalJSON hides the underlying cause; callers only get the kind and the
// generic user facing message.
func (e *ProviderError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind         ErrorKind    `json:"kind"`
		DocumentType DocumentType `json:"documentType,omitempty"`
		Message      string       `json:"message"`
	}{e.Kind, e.DocumentType, GenericFailureMessage})
}

// classify maps a raw client error onto the provider error taxonomy.
func classify(t DocumentType, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.DocumentType == "" {
			pe.DocumentType = t
		}
		return pe
	}
	return &ProviderError{Kind: kindOf(err), DocumentType: t, Err: err}
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrInvalidResponse):
		return KindInvalidResponse
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return KindRateLimited
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return KindTimeout
		}
		return KindUnknown
	}
	// Gemini surfaces quota errors as plain strings through langchaingo.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "resource_exhausted"), strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return KindRateLimited
	case strings.Contains(msg, "deadline exceeded"):
		return KindTimeout
	}
	return KindUnknown
}
