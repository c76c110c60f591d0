package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for local
// development and end-to-end runs without a postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	request    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	roadmap    TEXT,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS resources (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	unit       INTEGER NOT NULL DEFAULT 0,
	difficulty TEXT NOT NULL DEFAULT '',
	doc        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_resources_kind_subject ON resources(kind, subject);
CREATE INDEX IF NOT EXISTS idx_resources_subject_unit ON resources(subject, unit);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, req model.Request) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal request")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, request, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(reqJSON), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Request:   req,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, roadmap []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET roadmap = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(roadmap), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for run %s", runID)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request, status, COALESCE(roadmap, ''), error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanSQLiteRun(row.Scan)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, request, status, COALESCE(roadmap, ''), error, created_at, updated_at FROM runs`
	var conds []string
	args := []any{}
	if filter.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(filter.Status))
	}
	if filter.Subject != "" {
		conds = append(conds, `lower(json_extract(request, '$.subject')) = lower(?)`)
		args = append(args, filter.Subject)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs rows")
}

func scanSQLiteRun(scan func(dest ...any) error) (*model.Run, error) {
	var run model.Run
	var reqJSON, roadmap, status string
	err := scan(&run.ID, &reqJSON, &status, &roadmap, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	run.Status = model.RunStatus(status)
	if roadmap != "" {
		run.Roadmap = []byte(roadmap)
	}
	if err := json.Unmarshal([]byte(reqJSON), &run.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	return &run, nil
}

func (s *SQLiteStore) FindMaterials(ctx context.Context, subject string, unit int) ([]model.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM resources WHERE kind = ? AND lower(subject) = lower(?) AND unit = ?`,
		string(model.ResourceSlideMaterial), subject, unit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find materials")
	}
	defer rows.Close()
	return scanSQLiteResources(rows)
}

func (s *SQLiteStore) FindReferenceBooks(ctx context.Context, subject string, difficulty model.Level) ([]model.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM resources WHERE kind = ? AND lower(subject) = lower(?) AND (? = '' OR difficulty = ? OR difficulty = '')`,
		string(model.ResourceReferenceBook), subject, string(difficulty), string(difficulty),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find reference books")
	}
	defer rows.Close()
	return scanSQLiteResources(rows)
}

func scanSQLiteResources(rows *sql.Rows) ([]model.Resource, error) {
	var out []model.Resource
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan resource")
		}
		var res model.Resource
		if err := json.Unmarshal([]byte(doc), &res); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal resource")
		}
		out = append(out, res)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: resource rows")
}

func (s *SQLiteStore) ImportResources(ctx context.Context, resources []model.Resource) (int, error) {
	count := 0
	for _, res := range resources {
		if res.ID == "" {
			res.ID = uuid.New().String()
		}
		doc, err := json.Marshal(res)
		if err != nil {
			return count, eris.Wrap(err, "sqlite: marshal resource")
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO resources (id, kind, subject, unit, difficulty, doc) VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET kind = excluded.kind, subject = excluded.subject,
			 unit = excluded.unit, difficulty = excluded.difficulty, doc = excluded.doc`,
			res.ID, string(res.Kind), res.Subject, res.Unit, string(res.Difficulty), doc,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert resource %s", res.ID)
		}
		count++
	}
	return count, nil
}
