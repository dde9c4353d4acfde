package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Syzygyx/StealthOCR/internal/db"
	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO runs (id, source_file, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"start_run":    `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run": `UPDATE runs SET status = $1, result = $2, record_count = $3, updated_at = $4 WHERE id = $5`,
	"fail_run":     `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_run":      `SELECT id, source_file, status, error, record_count, result, created_at, updated_at FROM runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source_file  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'queued',
	error        TEXT,
	record_count INTEGER NOT NULL DEFAULT 0,
	result       JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, sourceFile string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, source_file, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, sourceFile, string(RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &Run{
		ID:         id,
		SourceFile: sourceFile,
		Status:     RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) StartRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(RunStatusRunning), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: start run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result reprog.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, result = $2, record_count = $3, updated_at = $4 WHERE id = $5`,
		string(RunStatusComplete), resultJSON, len(result.Records), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}

	rows := make([][]any, 0, len(result.Records))
	for i, rec := range result.Records {
		rows = append(rows, recordRow(runID, i, rec))
	}
	if _, err := db.CopyFrom(ctx, s.pool, "records", recordColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy records for run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_file, status, error, record_count, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	return scanPgRun(row)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, source_file, status, error, record_count, result, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.SourceFile != "" {
		query += fmt.Sprintf(` AND source_file = $%d`, argIdx)
		args = append(args, filter.SourceFile)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) Records(ctx context.Context, runID string) ([]reprog.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM records WHERE run_id = $1 ORDER BY position`,
		strings.Join(reprog.Header(), ", "),
	)
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: records for run %s", runID)
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
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: records iterate")
}

func scanPgRun(row pgx.Row) (*Run, error) {
	var r Run
	var errMsg *string
	var resultJSON []byte

	err := row.Scan(&r.ID, &r.SourceFile, &r.Status, &errMsg, &r.RecordCount, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	if errMsg != nil {
		r.Error = *errMsg
	}
	if len(resultJSON) > 0 {
		r.Result = &reprog.Result{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}
