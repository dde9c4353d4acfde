// Package store persists extraction runs and their records on SQLite or
// PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Syzygyx/StealthOCR/internal/config"
	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one extraction of one source document.
type Run struct {
	ID          string         `json:"id"`
	SourceFile  string         `json:"source_file"`
	Status      RunStatus      `json:"status"`
	Error       string         `json:"error,omitempty"`
	RecordCount int            `json:"record_count"`
	Result      *reprog.Result `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status     RunStatus `json:"status,omitempty"`
	SourceFile string    `json:"source_file,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	Offset     int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for extraction runs.
type Store interface {
	CreateRun(ctx context.Context, sourceFile string) (*Run, error)
	StartRun(ctx context.Context, runID string) error
	CompleteRun(ctx context.Context, runID string, result reprog.Result) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Records(ctx context.Context, runID string) ([]reprog.Record, error)

	Migrate(ctx context.Context) error
	Close() error
}

// recordColumns lists the records table columns in insert order: run linkage
// first, then the canonical record schema.
var recordColumns = append([]string{"run_id", "position"}, reprog.Header()...)

// recordRow flattens a record into the recordColumns layout.
func recordRow(runID string, position int, r reprog.Record) []any {
	row := make([]any, 0, len(recordColumns))
	row = append(row, runID, position)
	for _, f := range r.Fields() {
		row = append(row, f)
	}
	return row
}

// New opens the store named by config.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
