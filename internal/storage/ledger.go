package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/trending-snapshots/internal/config"
)

// RunRecord is the ledger entry written once per pipeline invocation.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Pipeline   string    `json:"pipeline"`
	RunDate    string    `json:"run_date"`
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	Rows       int64     `json:"rows"`
	Countries  int       `json:"countries"`
	Incomplete []string  `json:"incomplete_countries,omitempty"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Ledger keeps a history of runs.
type Ledger interface {
	Record(ctx context.Context, rec RunRecord) error
	// Recent returns up to limit records of pipeline, newest first.
	Recent(ctx context.Context, pipeline string, limit int) ([]RunRecord, error)
	Close() error
}

// NopLedger discards records.
type NopLedger struct{}

func (NopLedger) Record(context.Context, RunRecord) error { return nil }
func (NopLedger) Recent(context.Context, string, int) ([]RunRecord, error) {
	return nil, nil
}
func (NopLedger) Close() error { return nil }

// NewLedger opens the backend selected by cfg.Type.
func NewLedger(ctx context.Context, cfg config.LedgerConfig, storageCfg config.StorageConfig) (Ledger, error) {
	switch cfg.Type {
	case "", "none":
		return NopLedger{}, nil
	case "dynamodb":
		awsCfg, err := LoadAWSConfig(ctx, storageCfg, false)
		if err != nil {
			return nil, err
		}
		return NewDynamoLedgerFromConfig(awsCfg, cfg.DynamoDBTable, cfg.TTLDays), nil
	case "sqlite":
		return OpenSQLiteLedger(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown ledger type %q", cfg.Type)
	}
}
