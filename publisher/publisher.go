package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"nexletter/generator"
)

// SaveError wraps any persistence failure.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string { return "save " + e.Op + ": " + e.Err.Error() }
func (e *SaveError) Unwrap() error { return e.Err }

// Record is the on-disk manifest written next to the documents.
type Record struct {
	ID         string                  `json:"id"`
	SavedAt    time.Time               `json:"saved_at"`
	Descriptor generator.JobDescriptor `json:"descriptor"`
	Files      map[string]string       `json:"files"`
}

// FileSaver writes each draft as Markdown plus an HTML rendering into its own
// directory under a base path.
type FileSaver struct {
	basePath string
	md       goldmark.Markdown
	log      zerolog.Logger
	now      func() time.Time
}

func NewFileSaver(basePath string, logger zerolog.Logger) (*FileSaver, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileSaver{basePath: basePath, md: goldmark.New(), log: logger, now: time.Now}, nil
}

// Save writes <base>/<company>-<position>-<id>/{type}.md, {type}.html and record.json.
func (s *FileSaver) Save(ctx context.Context, drafts generator.DraftSet, d generator.JobDescriptor) error {
	if err := ctx.Err(); err != nil {
		return &SaveError{Op: "context", Err: err}
	}
	if !drafts.Complete() {
		return &SaveError{Op: "validate", Err: errors.New("draft set is incomplete")}
	}

	rec := Record{
		ID:         uuid.NewString(),
		SavedAt:    s.now().UTC(),
		Descriptor: d,
		Files:      make(map[string]string, len(drafts)*2),
	}
	dir := filepath.Join(s.basePath, slug(d.Company)+"-"+slug(d.Position)+"-"+rec.ID[:8])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &SaveError{Op: "mkdir", Err: err}
	}

	for _, t := range generator.DocumentTypes {
		text := drafts[t]
		mdName := string(t) + ".md"
		if err := os.WriteFile(filepath.Join(dir, mdName), []byte(text+"\n"), 0o644); err != nil {
			return &SaveError{Op: "write " + mdName, Err: err}
		}
		page, err := s.renderHTML(title(t, text, d), text)
		if err != nil {
			return &SaveError{Op: "render " + string(t), Err: err}
		}
		htmlName := string(t) + ".html"
		if err := os.WriteFile(filepath.Join(dir, htmlName), page, 0o644); err != nil {
			return &SaveError{Op: "write " + htmlName, Err: err}
		}
		rec.Files[mdName] = filepath.Join(dir, mdName)
		rec.Files[htmlName] = filepath.Join(dir, htmlName)
	}

	manifest, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &SaveError{Op: "encode record", Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, "record.json"), manifest, 0o644); err != nil {
		return &SaveError{Op: "write record", Err: err}
	}
	s.log.Info().Str("dir", dir).Str("record_id", rec.ID).Msg("drafts saved")
	return nil
}

func (s *FileSaver) renderHTML(title, text string) ([]byte, error) {
	var body bytes.Buffer
	if err := s.md.Convert([]byte(text), &body); err != nil {
		return nil, err
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	page.WriteString(html.EscapeString(title))
	page.WriteString("</title></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

func title(t generator.DocumentType, text string, d generator.JobDescriptor) string {
	if t == generator.Email {
		if subj := generator.Subject(text); subj != "" {
			return subj
		}
	}
	return fmt.Sprintf("%s: %s at %s", t.Label(), d.Position, d.Company)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

var _ generator.DraftSaver = (*FileSaver)(nil)
