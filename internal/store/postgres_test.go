package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markserbol/ai-optimisation-tool/internal/model"
)

// newMockStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_CreateAnalysis(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("a1", "https://example.com/", "crawling", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateAnalysis(context.Background(), model.Analysis{
		ID:        "a1",
		URL:       "https://example.com/",
		Status:    model.StatusCrawling,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateStatus_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE analyses SET status`).
		WithArgs("analyzing", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateStatus(context.Background(), "missing", model.StatusAnalyzing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MarkFailed(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE analyses SET status = \$1, error = \$2`).
		WithArgs("failed", "crawl failed: dns failure", "a1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.MarkFailed(context.Background(), "a1", "crawl failed: dns failure")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertPages_Copy(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"pages"}, []string{"id", "analysis_id", "url", "title", "content", "html"}).
		WillReturnResult(2)

	err := s.InsertPages(context.Background(), []model.Page{
		{ID: "p1", AnalysisID: "a1", URL: "https://example.com/", Title: "Home", Content: "c1"},
		{ID: "p2", AnalysisID: "a1", URL: "https://example.com/about", Content: "c2"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertPages_EmptyIsNoop(t *testing.T) {
	s, mock := newMockStore(t)

	require.NoError(t, s.InsertPages(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertSuggestions_Copy(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"suggestions"}, []string{"id", "analysis_id", "category", "issue", "why", "fix", "severity", "page_url"}).
		WillReturnResult(1)

	err := s.InsertSuggestions(context.Background(), []model.Suggestion{
		{ID: "s1", AnalysisID: "a1", Category: "content_clarity", Issue: "i", Why: "w", Fix: "f", Severity: model.SeverityHigh},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, url, status, error, created_at FROM analyses`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAnalysis(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_Full(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`SELECT id, url, status, error, created_at FROM analyses`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "status", "error", "created_at"}).
			AddRow("a1", "https://example.com/", "completed", "", created))

	mock.ExpectQuery(`SELECT id, url, title FROM pages`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "title"}).
			AddRow("p1", "https://example.com/", "Home").
			AddRow("p2", "https://example.com/about", ""))

	mock.ExpectQuery(`SELECT id, analysis_id, category, issue, why, fix, severity, page_url FROM suggestions`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "analysis_id", "category", "issue", "why", "fix", "severity", "page_url"}).
			AddRow("s1", "a1", "content_clarity", "vague copy", "w", "f", "high", "https://example.com/"))

	detail, err := s.GetAnalysis(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", detail.ID)
	assert.Equal(t, model.StatusCompleted, detail.Status)
	assert.Equal(t, created, detail.CreatedAt)
	require.Len(t, detail.Pages, 2)
	assert.Equal(t, "https://example.com/about", detail.Pages[1].URL)
	require.Len(t, detail.Suggestions, 1)
	assert.Equal(t, model.SeverityHigh, detail.Suggestions[0].Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_EmptyCollectionsNotNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, url, status, error, created_at FROM analyses`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "status", "error", "created_at"}).
			AddRow("a1", "https://example.com/", "failed", "crawl failed", time.Now().UTC()))

	mock.ExpectQuery(`SELECT id, url, title FROM pages`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "title"}))

	mock.ExpectQuery(`SELECT id, analysis_id, category, issue, why, fix, severity, page_url FROM suggestions`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "analysis_id", "category", "issue", "why", "fix", "severity", "page_url"}))

	detail, err := s.GetAnalysis(context.Background(), "a1")
	require.NoError(t, err)
	assert.NotNil(t, detail.Pages)
	assert.NotNil(t, detail.Suggestions)
	assert.Empty(t, detail.Pages)
	assert.Empty(t, detail.Suggestions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAnalyses(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT a.id, a.url, a.status, a.created_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "status", "created_at", "count", "count"}).
			AddRow("a2", "https://b.example.com/", "completed", now, 5, 12).
			AddRow("a1", "https://a.example.com/", "failed", now.Add(-time.Hour), 0, 0))

	summaries, err := s.ListAnalyses(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "a2", summaries[0].ID)
	assert.Equal(t, 5, summaries[0].PageCount)
	assert.Equal(t, 12, summaries[0].SuggestionCount)
	assert.Equal(t, model.StatusFailed, summaries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPages(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, analysis_id, url, title, content, html FROM pages`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "analysis_id", "url", "title", "content", "html"}).
			AddRow("p1", "a1", "https://example.com/", "Home", "welcome", "<p>welcome</p>"))

	pages, err := s.ListPages(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "welcome", pages[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateStatus_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE analyses SET status`).
		WithArgs("completed", "a1").
		WillReturnError(errors.New("connection reset"))

	err := s.UpdateStatus(context.Background(), "a1", model.StatusCompleted)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
