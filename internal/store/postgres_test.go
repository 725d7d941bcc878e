package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonloone/nx1-space-sub002/internal/model"
)

func sampleRanked() []model.RankedScore {
	return []model.RankedScore{
		{
			Rank: 1,
			Result: &model.ConditionalOpportunityScore{
				Cell: model.SpatialCell{ID: "cell-a"},
				Scores: model.ComponentScoreSet{
					Overall: model.OpportunityScore{Value: 82, Confidence: 0.9},
				},
				Classification: model.ClassificationExpansion,
				Priority:       model.PriorityCritical,
			},
		},
		{
			Rank: 2,
			Result: &model.ConditionalOpportunityScore{
				Cell: model.SpatialCell{ID: "cell-b"},
				Scores: model.ComponentScoreSet{
					Overall: model.OpportunityScore{Value: 61, Confidence: 0.8},
				},
				Classification: model.ClassificationOptimization,
				Priority:       model.PriorityMedium,
			},
		},
	}
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS scoring_runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	s := NewResultStore(mock)
	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	run := RunRecord{
		ID:         "run-1",
		Requested:  3,
		Succeeded:  2,
		Failed:     1,
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scoring_runs").
		WithArgs(run.ID, run.Requested, run.Succeeded, run.Failed, run.StartedAt, run.FinishedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"cell_scores"},
		[]string{"run_id", "cell_id", "rank", "overall", "confidence", "classification", "priority", "result"}).
		WillReturnResult(2)
	mock.ExpectCommit()
	mock.ExpectRollback()

	s := NewResultStore(mock)
	require.NoError(t, s.SaveRun(context.Background(), run, sampleRanked()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scoring_runs").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	s := NewResultStore(mock)
	err = s.SaveRun(context.Background(), RunRecord{ID: "run-1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert run")
}

func TestLoadTopResults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	payload := []byte(`{"cell":{"id":"cell-a"},"scores":{"overall":{"value":82}}}`)
	rows := pgxmock.NewRows([]string{"rank", "result"}).
		AddRow(1, payload)

	mock.ExpectQuery("SELECT rank, result FROM cell_scores").
		WithArgs("run-1", 10).
		WillReturnRows(rows)

	s := NewResultStore(mock)
	got, err := s.LoadTopResults(context.Background(), "run-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "cell-a", got[0].Result.Cell.ID)
	assert.InDelta(t, 82, got[0].Result.Scores.Overall.Value, 1e-9)
}

func TestLoadRun_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, requested, succeeded, failed").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	s := NewResultStore(mock)
	_, err = s.LoadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	started := time.Now().Add(-time.Hour)
	finished := time.Now()
	rows := pgxmock.NewRows([]string{"id", "requested", "succeeded", "failed", "started_at", "finished_at"}).
		AddRow("run-1", 5, 4, 1, started, finished)

	mock.ExpectQuery("SELECT id, requested, succeeded, failed").
		WithArgs("run-1").
		WillReturnRows(rows)

	s := NewResultStore(mock)
	got, err := s.LoadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Succeeded)
	assert.Equal(t, started, got.StartedAt)
}
