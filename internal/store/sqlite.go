package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
	id           TEXT PRIMARY KEY,
	source_file  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'queued',
	error        TEXT,
	record_count INTEGER NOT NULL DEFAULT 0,
	result       TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS records (
	run_id                     TEXT NOT NULL REFERENCES runs(id),
	position                   INTEGER NOT NULL,
	appropriation_category     TEXT NOT NULL DEFAULT '',
	appropriation_code         TEXT NOT NULL DEFAULT '',
	appropriation_activity     TEXT NOT NULL DEFAULT '',
	branch                     TEXT NOT NULL DEFAULT '',
	fiscal_year_start          TEXT NOT NULL DEFAULT '',
	fiscal_year_end            TEXT NOT NULL DEFAULT '',
	budget_activity_number     TEXT NOT NULL DEFAULT '',
	budget_activity_title      TEXT NOT NULL DEFAULT '',
	pem                        TEXT NOT NULL DEFAULT '',
	budget_title               TEXT NOT NULL DEFAULT '',
	program_base_congressional TEXT NOT NULL DEFAULT '',
	program_base_dod           TEXT NOT NULL DEFAULT '',
	reprogramming_amount       TEXT NOT NULL DEFAULT '',
	revised_program_total      TEXT NOT NULL DEFAULT '',
	explanation                TEXT NOT NULL DEFAULT '',
	file                       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_source_file ON runs(source_file);
CREATE INDEX IF NOT EXISTS idx_records_branch ON records(branch);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, sourceFile string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_file, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, sourceFile, string(RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:         id,
		SourceFile: sourceFile,
		Status:     RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) StartRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusRunning), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: start run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result reprog.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, result = ?, record_count = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusComplete), string(resultJSON), len(result.Records), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	if err := checkRowsAffected(res, "run", runID); err != nil {
		return err
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO records (%s) VALUES (%s)`,
		strings.Join(recordColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", "),
	)
	for i, rec := range result.Records {
		if _, err := tx.ExecContext(ctx, insertSQL, recordRow(runID, i, rec)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert record %d for run %s", i, runID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_file, status, error, record_count, result, created_at, updated_at
		 FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, source_file, status, error, record_count, result, created_at, updated_at
	          FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.SourceFile != "" {
		query += ` AND source_file = ?`
		args = append(args, filter.SourceFile)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) Records(ctx context.Context, runID string) ([]reprog.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM records WHERE run_id = ? ORDER BY position`,
		strings.Join(reprog.Header(), ", "),
	)
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: records for run %s", runID)
	}
	defer rows.Close()

	var records []reprog.Record
	for rows.Next() {
		var r reprog.Record
		if err := rows.Scan(
			&r.AppropriationCategory, &r.AppropriationCode, &r.AppropriationActivity,
			&r.Branch, &r.FiscalYearStart, &r.FiscalYearEnd,
			&r.BudgetActivityNumber, &r.BudgetActivityTitle, &r.PEM, &r.BudgetTitle,
			&r.ProgramBaseCongressional, &r.ProgramBaseDoD,
			&r.ReprogrammingAmount, &r.RevisedProgramTotal,
			&r.Explanation, &r.File,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: records iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	var errMsg, resultJSON sql.NullString

	err := row.Scan(&r.ID, &r.SourceFile, &r.Status, &errMsg, &r.RecordCount, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if resultJSON.Valid && resultJSON.String != "" {
		r.Result = &reprog.Result{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &r, nil
}
