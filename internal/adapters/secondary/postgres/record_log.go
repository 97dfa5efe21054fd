package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-governance-service/internal/adapters/secondary/memory"
	"model-governance-service/internal/config"
	ports "model-governance-service/internal/core/ports/output"
)

const schema = `
CREATE TABLE IF NOT EXISTS governance_records (
	seq        BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	record_key TEXT NOT NULL,
	data       BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_governance_records_collection_key
	ON governance_records (collection, record_key, seq);
`

// appendLockID serializes appenders so sequence order equals commit order.
const appendLockID = 0x676f76726e

type recordLog struct {
	pool *pgxpool.Pool
}

// NewPool creates a pgx pool from config and checks connectivity.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// NewRecordLog creates the records table if needed. The pool is closed by
// the returned log's Close.
func NewRecordLog(ctx context.Context, pool *pgxpool.Pool) (ports.RecordLog, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &recordLog{pool: pool}, nil
}

func (r *recordLog) Append(ctx context.Context, entries ...ports.Append) ([]int64, error) {
	if err := memory.ValidateAppends(entries); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockID); err != nil {
		return nil, fmt.Errorf("acquire append lock: %w", err)
	}

	seqs := make([]int64, len(entries))
	for i, e := range entries {
		query := `
			INSERT INTO governance_records (collection, record_key, data)
			VALUES ($1, $2, $3)
			RETURNING seq
		`
		if err := tx.QueryRow(ctx, query, e.Collection, e.Key, e.Data).Scan(&seqs[i]); err != nil {
			return nil, fmt.Errorf("append to %s: %w", e.Collection, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return seqs, nil
}

func (r *recordLog) List(ctx context.Context, collection, key string, asOf int64) ([]ports.StoredRecord, error) {
	query := `
		SELECT seq, collection, record_key, data
		FROM governance_records
		WHERE collection = $1
		  AND ($2 = '' OR record_key = $2)
		  AND ($3 <= 0 OR seq <= $3)
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, collection, key, asOf)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ports.StoredRecord, error) {
		var rec ports.StoredRecord
		err := row.Scan(&rec.Seq, &rec.Collection, &rec.Key, &rec.Data)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	return recs, nil
}

func (r *recordLog) Head(ctx context.Context) (int64, error) {
	var head int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM governance_records`).Scan(&head); err != nil {
		return 0, fmt.Errorf("read head: %w", err)
	}
	return head, nil
}

func (r *recordLog) Close() error {
	r.pool.Close()
	return nil
}
