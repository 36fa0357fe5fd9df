package generator

import (
	"fmt"
	"time"
)

// DocumentType identifies one of the three application documents.
type DocumentType string

const (
	LinkedInMessage DocumentType = "linkedinMessage"
	Email           DocumentType = "email"
	CoverLetter     DocumentType = "coverLetter"
)

// DocumentTypes lists every document produced per request, in display order.
var DocumentTypes = []DocumentType{LinkedInMessage, Email, CoverLetter}

// ParseDocumentType accepts the wire names plus a few short aliases used by the CLI.
func ParseDocumentType(s string) (DocumentType, error) {
	switch s {
	case string(LinkedInMessage), "linkedin":
		return LinkedInMessage, nil
	case string(Email):
		return Email, nil
	case string(CoverLetter), "cover-letter", "cover":
		return CoverLetter, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case LinkedInMessage, Email, CoverLetter:
		return true
	}
	return false
}

// Label is the human readable name used in prompts and exports.
func (t DocumentType) Label() string {
	switch t {
	case LinkedInMessage:
		return "LinkedIn message"
	case Email:
		return "email"
	case CoverLetter:
		return "cover letter"
	}
	return string(t)
}

// RawFields are the unvalidated form inputs of a submission.
type RawFields struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	URL         string `json:"url"`
	Description string `json:"description"`
	ContentType string `json:"contentType"`
}

// JobDescriptor is a validated job opening. It is passed by value and never
// mutated once a request starts.
type JobDescriptor struct {
	Position    string       `json:"position"`
	Company     string       `json:"company"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description"`
	ContentType DocumentType `json:"contentType"`
}

// DraftSet holds the generated text of all three documents of one request.
type DraftSet map[DocumentType]string

// Complete reports whether every document type has non-empty text.
func (d DraftSet) Complete() bool {
	for _, t := range DocumentTypes {
		if d[t] == "" {
			return false
		}
	}
	return true
}

func (d DraftSet) clone() DraftSet {
	if d == nil {
		return nil
	}
	out := make(DraftSet, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Phase is the tag of the request state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText renders the phase by name so it reads well in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the request manager. Which fields are set depends on
// Phase: Pending carries Descriptor, StartedAt and RequestID; Succeeded adds
// Drafts; Failed adds Failure.
type State struct {
	Phase      Phase          `json:"phase"`
	RequestID  uint64         `json:"requestId,omitempty"`
	Descriptor *JobDescriptor `json:"descriptor,omitempty"`
	StartedAt  time.Time      `json:"startedAt,omitempty"`
	Drafts     DraftSet       `json:"drafts,omitempty"`
	Failure    *ProviderError `json:"failure,omitempty"`
}

// Turn records one resolved request of a session.
type Turn struct {
	RequestID   uint64        `json:"requestId"`
	Descriptor  JobDescriptor `json:"descriptor"`
	Phase       Phase         `json:"phase"`
	FailureKind ErrorKind     `json:"failureKind,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}
