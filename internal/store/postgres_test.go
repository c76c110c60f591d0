package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), testRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	reqJSON, _ := json.Marshal(testRequest())
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "request", "status", "roadmap", "error", "created_at", "updated_at"}).
		AddRow("run-1", reqJSON, "complete", []byte(`{"roadmap_id":"r1"}`), "", now, now)

	mock.ExpectQuery(`SELECT id, request, status, roadmap`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "Linear Algebra", run.Request.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, request, status, roadmap`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("retrieving", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusRetrieving)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET roadmap`).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", []byte(`{}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", "store unreachable", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.FailRun(context.Background(), "run-1", "store unreachable")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_SubjectFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	reqJSON, _ := json.Marshal(testRequest())
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "request", "status", "roadmap", "error", "created_at", "updated_at"}).
		AddRow("run-1", reqJSON, "complete", []byte(`{}`), "", now, now)

	mock.ExpectQuery(`SELECT id, request, status, roadmap, (.+) FROM runs WHERE lower\(request->>'subject'\) = lower\(\$1\)`).
		WithArgs("Linear Algebra", 50, 0).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{Subject: "Linear Algebra"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Linear Algebra", runs[0].Request.Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_StatusAndSubject(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM runs WHERE status = \$1 AND lower\(request->>'subject'\) = lower\(\$2\)`).
		WithArgs("complete", "Linear Algebra", 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "request", "status", "roadmap", "error", "created_at", "updated_at"}))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete, Subject: "Linear Algebra"})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindMaterials(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	doc, _ := json.Marshal(model.Resource{ID: "m1", Kind: model.ResourceSlideMaterial, Title: "Vectors"})
	rows := pgxmock.NewRows([]string{"doc"}).AddRow(doc)

	mock.ExpectQuery(`SELECT doc FROM resources WHERE kind`).
		WithArgs("slide_material", "Linear Algebra", 1).
		WillReturnRows(rows)

	materials, err := s.FindMaterials(context.Background(), "Linear Algebra", 1)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "Vectors", materials[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindReferenceBooks_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT doc FROM resources WHERE kind`).
		WithArgs("reference_book", "Chemistry", "intermediate").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	books, err := s.FindReferenceBooks(context.Background(), "Chemistry", model.LevelIntermediate)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ImportResources_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT`).
		WithArgs("m1", "slide_material", "Go", 1, "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.ImportResources(context.Background(), []model.Resource{
		{ID: "m1", Kind: model.ResourceSlideMaterial, Subject: "Go", Unit: 1, Title: "slides"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PingUnreachable(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := s.Ping(context.Background())
	assert.Error(t, err)
}
