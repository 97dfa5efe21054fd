package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"model-governance-service/internal/adapters/secondary/memory"
	ports "model-governance-service/internal/core/ports/output"
)

const schema = `
CREATE TABLE IF NOT EXISTS governance_records (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	record_key TEXT NOT NULL,
	data BLOB NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_records_collection_key ON governance_records(collection, record_key, seq);
`

const busyTimeoutMillis = 5000

func dsn(path string) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMillis)
}

// RecordLog stores every collection in one SQLite table.
type RecordLog struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*RecordLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}
	// pragmas in the DSN run on every pooled connection; WAL lets readers
	// proceed while a write transaction is open
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening record db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("creating schema: %w (also: close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &RecordLog{db: db}, nil
}

func (s *RecordLog) Append(ctx context.Context, entries ...ports.Append) ([]int64, error) {
	if err := memory.ValidateAppends(entries); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seqs := make([]int64, len(entries))
	for i, e := range entries {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO governance_records (collection, record_key, data) VALUES (?, ?, ?)",
			e.Collection, e.Key, e.Data)
		if err != nil {
			return nil, fmt.Errorf("append to %s: %w", e.Collection, err)
		}
		if seqs[i], err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("read seq: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return seqs, nil
}

func (s *RecordLog) List(ctx context.Context, collection, key string, asOf int64) ([]ports.StoredRecord, error) {
	query := "SELECT seq, collection, record_key, data FROM governance_records WHERE collection = ?"
	args := []any{collection}
	if key != "" {
		query += " AND record_key = ?"
		args = append(args, key)
	}
	if asOf > 0 {
		query += " AND seq <= ?"
		args = append(args, asOf)
	}
	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out []ports.StoredRecord
	for rows.Next() {
		var rec ports.StoredRecord
		if err := rows.Scan(&rec.Seq, &rec.Collection, &rec.Key, &rec.Data); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *RecordLog) Head(ctx context.Context) (int64, error) {
	var head int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM governance_records").Scan(&head); err != nil {
		return 0, fmt.Errorf("reading head: %w", err)
	}
	return head, nil
}

func (s *RecordLog) Close() error {
	return s.db.Close()
}
