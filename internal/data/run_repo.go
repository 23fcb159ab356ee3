package data

import (
	"database/sql"

	"odbcperf/internal/core"
)

type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Create(run *core.RunRecord) error {
	res, err := r.db.Exec(`INSERT INTO runs (run_id, started_at, library, sql_driver, test_case, sql_text, row_count, duration_ms, status, error_message) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt.UTC(), run.Library, run.SQLDriver, run.TestCase, run.SQLText, run.RowCount, run.DurationMs, run.Status, run.ErrorMsg)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

func (r *RunRepo) GetRecent(limit int) ([]core.RunRecord, error) {
	rows, err := r.db.Query(`SELECT id, run_id, started_at, library, sql_driver, test_case, sql_text, row_count, duration_ms, status, error_message FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []core.RunRecord
	for rows.Next() {
		var run core.RunRecord
		if err := rows.Scan(&run.ID, &run.RunID, &run.StartedAt, &run.Library, &run.SQLDriver, &run.TestCase,
			&run.SQLText, &run.RowCount, &run.DurationMs, &run.Status, &run.ErrorMsg); err != nil {
			return nil, err
		}

		// sqlite hands back UTC
		run.StartedAt = run.StartedAt.Local()

		runs = append(runs, run)
	}
	return runs, rows.Err()
}
