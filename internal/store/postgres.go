package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = eris.New("store: not found")

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool and verifies
// connectivity. An unreachable database here is the fatal boundary case:
// the caller fails the process instead of degrading.
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

// NewPostgresWithPool wraps an existing pool (used by tests with pgxmock).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	request    JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	roadmap    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS resources (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	unit       INTEGER NOT NULL DEFAULT 0,
	difficulty TEXT NOT NULL DEFAULT '',
	doc        JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_resources_kind_subject ON resources(kind, lower(subject));
CREATE INDEX IF NOT EXISTS idx_resources_subject_unit ON resources(lower(subject), unit);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, req model.Request) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal request")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, request, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, reqJSON, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Request:   req,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, roadmap []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET roadmap = $1, status = $2, updated_at = $3 WHERE id = $4`,
		roadmap, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, request, status, roadmap, COALESCE(error, ''), created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	return scanRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, request, status, roadmap, COALESCE(error, ''), created_at, updated_at FROM runs`
	var conds []string
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf(`status = $%d`, len(args)))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conds = append(conds, fmt.Sprintf(`lower(request->>'subject') = lower($%d)`, len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs rows")
}

func scanRun(row pgx.Row) (*model.Run, error) {
	var run model.Run
	var reqJSON []byte
	var status string
	err := row.Scan(&run.ID, &reqJSON, &status, &run.Roadmap, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	run.Status = model.RunStatus(status)
	if err := json.Unmarshal(reqJSON, &run.Request); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	return &run, nil
}

func (s *PostgresStore) FindMaterials(ctx context.Context, subject string, unit int) ([]model.Resource, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM resources WHERE kind = $1 AND lower(subject) = lower($2) AND unit = $3`,
		string(model.ResourceSlideMaterial), subject, unit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find materials")
	}
	defer rows.Close()
	return scanResources(rows)
}

func (s *PostgresStore) FindReferenceBooks(ctx context.Context, subject string, difficulty model.Level) ([]model.Resource, error) {
	// Difficulty is a coarse filter only; empty matches everything and the
	// ranker handles exact-vs-adjacent alignment downstream.
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM resources WHERE kind = $1 AND lower(subject) = lower($2) AND ($3 = '' OR difficulty = $3 OR difficulty = '')`,
		string(model.ResourceReferenceBook), subject, string(difficulty),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find reference books")
	}
	defer rows.Close()
	return scanResources(rows)
}

func scanResources(rows pgx.Rows) ([]model.Resource, error) {
	var out []model.Resource
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan resource")
		}
		var res model.Resource
		if err := json.Unmarshal(doc, &res); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal resource")
		}
		out = append(out, res)
	}
	return out, eris.Wrap(rows.Err(), "postgres: resource rows")
}

func (s *PostgresStore) ImportResources(ctx context.Context, resources []model.Resource) (int, error) {
	count := 0
	for _, res := range resources {
		if res.ID == "" {
			res.ID = uuid.New().String()
		}
		doc, err := json.Marshal(res)
		if err != nil {
			return count, eris.Wrap(err, "postgres: marshal resource")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO resources (id, kind, subject, unit, difficulty, doc) VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET kind = $2, subject = $3, unit = $4, difficulty = $5, doc = $6`,
			res.ID, string(res.Kind), res.Subject, res.Unit, string(res.Difficulty), doc,
		)
		if err != nil {
			return count, eris.Wrapf(err, "postgres: upsert resource %s", res.ID)
		}
		count++
	}
	return count, nil
}
