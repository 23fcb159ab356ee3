package data

import (
	"path/filepath"
	"testing"
	"time"

	"odbcperf/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepoCreateAndGetRecent(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "history", "odbcperf.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRunRepo(db)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, tc := range []string{"fetch-all", "sql-type-boolean", "sql-type-int"} {
		run := &core.RunRecord{
			RunID:      "run-1",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			Library:    "sqlx",
			SQLDriver:  "odbc",
			TestCase:   tc,
			SQLText:    "SELECT 1",
			RowCount:   int64(10 * i),
			DurationMs: int64(100 + i),
			Status:     "SUCCESS",
		}
		require.NoError(t, repo.Create(run))
		assert.NotZero(t, run.ID)
	}

	recent, err := repo.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "sql-type-int", recent[0].TestCase)
	assert.Equal(t, "sql-type-boolean", recent[1].TestCase)
	assert.Equal(t, int64(20), recent[0].RowCount)
	assert.True(t, recent[0].StartedAt.Equal(base.Add(2*time.Minute)))
}

func TestInitDBIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odbcperf.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, NewRunRepo(db).Create(&core.RunRecord{RunID: "a", Library: "sql", SQLDriver: "odbc", TestCase: "fetch-all", StartedAt: time.Now()}))
	require.NoError(t, db.Close())

	db, err = InitDB(path)
	require.NoError(t, err)
	defer db.Close()

	recent, err := NewRunRepo(db).GetRecent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
