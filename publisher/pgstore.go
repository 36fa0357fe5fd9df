package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"nexletter/generator"
)

const createDraftsTable = `CREATE TABLE IF NOT EXISTS application_drafts (
	id               UUID PRIMARY KEY,
	position         TEXT NOT NULL,
	company          TEXT NOT NULL,
	job_url          TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL,
	content_type     TEXT NOT NULL,
	linkedin_message TEXT NOT NULL,
	email            TEXT NOT NULL,
	cover_letter     TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertDraft = `INSERT INTO application_drafts
	(id, position, company, job_url, description, content_type, linkedin_message, email, cover_letter)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSaver stores draft sets in PostgreSQL, one row per save.
type PGSaver struct {
	db   execer
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPGSaver connects to databaseURL and makes sure the table exists.
func NewPGSaver(ctx context.Context, databaseURL string, logger zerolog.Logger) (*PGSaver, error) {
	if databaseURL == "" {
		return nil, errors.New("storage: database url is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	s := &PGSaver{db: pool, pool: pool, log: logger}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the drafts table if needed.
func (s *PGSaver) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createDraftsTable); err != nil {
		return fmt.Errorf("storage: create table: %w", err)
	}
	return nil
}

func (s *PGSaver) Save(ctx context.Context, drafts generator.DraftSet, d generator.JobDescriptor) error {
	if !drafts.Complete() {
		return &SaveError{Op: "validate", Err: errors.New("draft set is incomplete")}
	}
	id := uuid.New()
	tag, err := s.db.Exec(ctx, insertDraft,
		id.String(), d.Position, d.Company, d.URL, d.Description, string(d.ContentType),
		drafts[generator.LinkedInMessage], drafts[generator.Email], drafts[generator.CoverLetter],
	)
	if err != nil {
		return &SaveError{Op: "insert", Err: err}
	}
	if tag.RowsAffected() != 1 {
		return &SaveError{Op: "insert", Err: fmt.Errorf("expected 1 row, got %d", tag.RowsAffected())}
	}
	s.log.Info().Str("record_id", id.String()).Msg("drafts saved")
	return nil
}

// Close releases the connection pool.
func (s *PGSaver) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ generator.DraftSaver = (*PGSaver)(nil)
