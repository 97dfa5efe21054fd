package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	ports "model-governance-service/internal/core/ports/output"
)

// RecordLog is an in-memory ports.RecordLog. It also serves as the read
// index of the file store.
type RecordLog struct {
	mu           sync.RWMutex
	records      []ports.StoredRecord
	byCollection map[string][]int
	head         int64
}

func NewRecordLog() *RecordLog {
	return &RecordLog{byCollection: make(map[string][]int)}
}

func (l *RecordLog) Append(ctx context.Context, entries ...ports.Append) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateAppends(entries); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seqs := make([]int64, len(entries))
	for i, e := range entries {
		l.head++
		seqs[i] = l.head
		l.insert(ports.StoredRecord{
			Seq:        l.head,
			Collection: e.Collection,
			Key:        e.Key,
			Data:       slices.Clone(e.Data),
		})
	}
	return seqs, nil
}

// Restore adds records that already carry sequence numbers. Sequences must
// be ascending and above the current head.
func (l *RecordLog) Restore(records ...ports.StoredRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.head
	for _, r := range records {
		if r.Seq <= next {
			return fmt.Errorf("restore seq %d: not after head %d", r.Seq, next)
		}
		next = r.Seq
	}
	for _, r := range records {
		r.Data = slices.Clone(r.Data)
		l.insert(r)
	}
	l.head = next
	return nil
}

func (l *RecordLog) insert(r ports.StoredRecord) {
	l.records = append(l.records, r)
	l.byCollection[r.Collection] = append(l.byCollection[r.Collection], len(l.records)-1)
}

func (l *RecordLog) List(ctx context.Context, collection, key string, asOf int64) ([]ports.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []ports.StoredRecord
	for _, idx := range l.byCollection[collection] {
		r := l.records[idx]
		if asOf > 0 && r.Seq > asOf {
			break
		}
		if key != "" && r.Key != key {
			continue
		}
		r.Data = slices.Clone(r.Data)
		out = append(out, r)
	}
	return out, nil
}

func (l *RecordLog) Head(ctx context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head, nil
}

func (l *RecordLog) Close() error { return nil }

// ValidateAppends rejects entries no backend can store.
func ValidateAppends(entries []ports.Append) error {
	if len(entries) == 0 {
		return fmt.Errorf("append: no entries")
	}
	for _, e := range entries {
		if !validCollection(e.Collection) {
			return fmt.Errorf("append: invalid collection name %q", e.Collection)
		}
		if len(e.Data) == 0 {
			return fmt.Errorf("append to %s: empty payload", e.Collection)
		}
	}
	return nil
}

func validCollection(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if (c < 'a' || c > 'z') && c != '_' {
			return false
		}
	}
	return true
}
