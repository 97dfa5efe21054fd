package recordstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	ports "model-governance-service/internal/core/ports/output"
)

func decode[T any](rec ports.StoredRecord) (*T, error) {
	var v T
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return nil, fmt.Errorf("decode %s record %d: %w", rec.Collection, rec.Seq, err)
	}
	return &v, nil
}

func isTombstone(rec ports.StoredRecord) bool {
	return bytes.Equal(bytes.TrimSpace(rec.Data), ports.Tombstone)
}

// current folds a versioned collection down to the live record per key.
// Keys are returned in order of their latest write.
func current(records []ports.StoredRecord) []ports.StoredRecord {
	latest := make(map[string]int, len(records))
	for i, rec := range records {
		latest[rec.Key] = i
	}
	out := make([]ports.StoredRecord, 0, len(latest))
	for i, rec := range records {
		if latest[rec.Key] != i || isTombstone(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// last returns the final record for a single key, or false when the key was
// never written or has been deleted.
func last(records []ports.StoredRecord) (ports.StoredRecord, bool) {
	if len(records) == 0 {
		return ports.StoredRecord{}, false
	}
	rec := records[len(records)-1]
	if isTombstone(rec) {
		return ports.StoredRecord{}, false
	}
	return rec, true
}
