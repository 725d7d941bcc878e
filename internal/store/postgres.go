package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

// ResultStore reads and writes scoring runs.
type ResultStore struct {
	pool    Pool
	closeFn func()
}

// NewResultStore wraps an existing pool. Used by tests with pgxmock.
func NewResultStore(pool Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// NewPostgres connects to PostgreSQL and returns a ResultStore.
func NewPostgres(ctx context.Context, connString string) (*ResultStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}
	return &ResultStore{pool: pool, closeFn: pool.Close}, nil
}

// Close releases the connection pool, if this store owns one.
func (s *ResultStore) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

const migration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id          TEXT PRIMARY KEY,
	requested   INT NOT NULL,
	succeeded   INT NOT NULL,
	failed      INT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS cell_scores (
	run_id         TEXT NOT NULL REFERENCES scoring_runs(id),
	cell_id        TEXT NOT NULL,
	rank           INT NOT NULL,
	overall        DOUBLE PRECISION NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL,
	classification TEXT NOT NULL,
	priority       TEXT NOT NULL,
	result         JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, cell_id)
);

CREATE INDEX IF NOT EXISTS cell_scores_overall_idx ON cell_scores (overall DESC);
`

// Migrate creates the result tables when missing.
func (s *ResultStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migration); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// RunRecord summarizes one persisted batch run.
type RunRecord struct {
	ID         string
	Requested  int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// SaveRun persists a batch run and its ranked results in one transaction.
func (s *ResultStore) SaveRun(ctx context.Context, run RunRecord, ranked []model.RankedScore) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO scoring_runs (id, requested, succeeded, failed, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Requested, run.Succeeded, run.Failed, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "store: insert run %s", run.ID)
	}

	rows := make([][]any, 0, len(ranked))
	for _, r := range ranked {
		payload, err := json.Marshal(r.Result)
		if err != nil {
			return eris.Wrapf(err, "store: marshal result for cell %s", r.Result.Cell.ID)
		}
		rows = append(rows, []any{
			run.ID, r.Result.Cell.ID, r.Rank,
			r.Result.Scores.Overall.Value, r.Result.Scores.Overall.Confidence,
			string(r.Result.Classification), string(r.Result.Priority),
			payload,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"cell_scores"},
		[]string{"run_id", "cell_id", "rank", "overall", "confidence", "classification", "priority", "result"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return eris.Wrapf(err, "store: copy results for run %s", run.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "store: commit")
	}

	zap.L().Info("store: run saved",
		zap.String("run_id", run.ID),
		zap.Int64("results", n),
	)
	return nil
}

// LoadTopResults returns the highest-scoring cells from a run, rank order.
func (s *ResultStore) LoadTopResults(ctx context.Context, runID string, limit int) ([]model.RankedScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT rank, result FROM cell_scores WHERE run_id = $1 ORDER BY rank ASC LIMIT $2`,
		runID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "store: load results for run %s", runID)
	}
	defer rows.Close()

	var out []model.RankedScore
	for rows.Next() {
		var rank int
		var payload []byte
		if err := rows.Scan(&rank, &payload); err != nil {
			return nil, eris.Wrap(err, "store: scan result row")
		}
		var result model.ConditionalOpportunityScore
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal result")
		}
		out = append(out, model.RankedScore{Rank: rank, Result: &result})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate result rows")
	}
	return out, nil
}

// LoadRun returns the run summary, or an error when the run is unknown.
func (s *ResultStore) LoadRun(ctx context.Context, runID string) (*RunRecord, error) {
	run := &RunRecord{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, requested, succeeded, failed, started_at, finished_at
		 FROM scoring_runs WHERE id = $1`, runID,
	).Scan(&run.ID, &run.Requested, &run.Succeeded, &run.Failed, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, eris.Errorf("store: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "store: load run %s", runID)
	}
	return run, nil
}
