// Package store persists analyses, crawled pages, and suggestions in
// PostgreSQL.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/markserbol/ai-optimisation-tool/internal/model"
)

// ErrNotFound is returned by reads for an unknown analysis ID.
var ErrNotFound = errors.New("analysis not found")

// Pool is the subset of pgxpool.Pool the store uses, narrowed so tests can
// substitute a mock connection.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements persistence using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool and verifies
// connectivity before returning.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// seq columns record insertion order so reads return pages and suggestions
// in the order the pipeline produced them.
const migration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pages (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	url         TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	html        TEXT NOT NULL DEFAULT '',
	seq         BIGSERIAL
);

CREATE TABLE IF NOT EXISTS suggestions (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	category    TEXT NOT NULL,
	issue       TEXT NOT NULL,
	why         TEXT NOT NULL,
	fix         TEXT NOT NULL,
	severity    TEXT NOT NULL,
	page_url    TEXT NOT NULL DEFAULT '',
	seq         BIGSERIAL
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_pages_analysis_id ON pages(analysis_id);
CREATE INDEX IF NOT EXISTS idx_suggestions_analysis_id ON suggestions(analysis_id);
`

// Migrate applies the schema. Every statement is idempotent, so running it
// on each startup is safe.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, a model.Analysis) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, url, status, created_at) VALUES ($1, $2, $3, $4)`,
		a.ID, a.URL, string(a.Status), a.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert analysis %s", a.ID)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, analysisID string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1 WHERE id = $2`,
		string(status), analysisID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", analysisID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: update status %s", analysisID)
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, analysisID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, error = $2 WHERE id = $3`,
		string(model.StatusFailed), message, analysisID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark failed %s", analysisID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: mark failed %s", analysisID)
	}
	return nil
}

// InsertPages bulk-inserts crawled pages using the COPY protocol. Page
// content can run to megabytes per crawl, so row-at-a-time inserts are
// deliberately avoided.
func (s *PostgresStore) InsertPages(ctx context.Context, pages []model.Page) error {
	if len(pages) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, []any{p.ID, p.AnalysisID, p.URL, p.Title, p.Content, p.HTML})
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"pages"},
		[]string{"id", "analysis_id", "url", "title", "content", "html"},
		pgx.CopyFromRows(rows),
	)
	return eris.Wrap(err, "postgres: copy pages")
}

func (s *PostgresStore) ListPages(ctx context.Context, analysisID string) ([]model.Page, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, url, title, content, html FROM pages WHERE analysis_id = $1 ORDER BY seq`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list pages %s", analysisID)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.AnalysisID, &p.URL, &p.Title, &p.Content, &p.HTML); err != nil {
			return nil, eris.Wrap(err, "postgres: scan page")
		}
		pages = append(pages, p)
	}
	return pages, eris.Wrap(rows.Err(), "postgres: list pages iterate")
}

func (s *PostgresStore) InsertSuggestions(ctx context.Context, suggestions []model.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(suggestions))
	for _, sg := range suggestions {
		rows = append(rows, []any{sg.ID, sg.AnalysisID, sg.Category, sg.Issue, sg.Why, sg.Fix, string(sg.Severity), sg.PageURL})
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"suggestions"},
		[]string{"id", "analysis_id", "category", "issue", "why", "fix", "severity", "page_url"},
		pgx.CopyFromRows(rows),
	)
	return eris.Wrap(err, "postgres: copy suggestions")
}

// GetAnalysis returns the full detail for one analysis: the record itself
// plus page references and suggestions, both in insertion order. Returns
// ErrNotFound (wrapped) for an unknown ID.
func (s *PostgresStore) GetAnalysis(ctx context.Context, analysisID string) (*model.AnalysisDetail, error) {
	var d model.AnalysisDetail
	err := s.pool.QueryRow(ctx,
		`SELECT id, url, status, error, created_at FROM analyses WHERE id = $1`,
		analysisID,
	).Scan(&d.ID, &d.URL, &d.Status, &d.Error, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get analysis %s", analysisID)
		}
		return nil, eris.Wrapf(err, "postgres: get analysis %s", analysisID)
	}

	d.Pages = []model.PageRef{}
	d.Suggestions = []model.Suggestion{}

	pageRows, err := s.pool.Query(ctx,
		`SELECT id, url, title FROM pages WHERE analysis_id = $1 ORDER BY seq`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis pages %s", analysisID)
	}
	defer pageRows.Close()
	for pageRows.Next() {
		var p model.PageRef
		if err := pageRows.Scan(&p.ID, &p.URL, &p.Title); err != nil {
			return nil, eris.Wrap(err, "postgres: scan page ref")
		}
		d.Pages = append(d.Pages, p)
	}
	if err := pageRows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: get analysis pages iterate")
	}

	sugRows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, category, issue, why, fix, severity, page_url FROM suggestions WHERE analysis_id = $1 ORDER BY seq`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis suggestions %s", analysisID)
	}
	defer sugRows.Close()
	for sugRows.Next() {
		var sg model.Suggestion
		if err := sugRows.Scan(&sg.ID, &sg.AnalysisID, &sg.Category, &sg.Issue, &sg.Why, &sg.Fix, &sg.Severity, &sg.PageURL); err != nil {
			return nil, eris.Wrap(err, "postgres: scan suggestion")
		}
		d.Suggestions = append(d.Suggestions, sg)
	}
	if err := sugRows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: get analysis suggestions iterate")
	}

	return &d, nil
}

// ListAnalyses returns the history listing, newest first, with per-analysis
// page and suggestion counts.
func (s *PostgresStore) ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.url, a.status, a.created_at,
		        (SELECT COUNT(*) FROM pages p WHERE p.analysis_id = a.id),
		        (SELECT COUNT(*) FROM suggestions s WHERE s.analysis_id = a.id)
		 FROM analyses a
		 ORDER BY a.created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	summaries := []model.AnalysisSummary{}
	for rows.Next() {
		var sm model.AnalysisSummary
		if err := rows.Scan(&sm.ID, &sm.URL, &sm.Status, &sm.CreatedAt, &sm.PageCount, &sm.SuggestionCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis summary")
		}
		summaries = append(summaries, sm)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}
