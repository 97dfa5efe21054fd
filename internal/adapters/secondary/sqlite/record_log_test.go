package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "model-governance-service/internal/core/ports/output"
)

func openTestLog(t *testing.T) *RecordLog {
	t.Helper()
	rl, err := Open(filepath.Join(t.TempDir(), "governance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })
	return rl
}

func TestRecordLog_AppendListHead(t *testing.T) {
	rl := openTestLog(t)
	ctx := context.Background()

	seqs, err := rl.Append(ctx,
		ports.Append{Collection: "drift", Key: "model_a", Data: []byte(`{"value":0.045}`)},
		ports.Append{Collection: "audit_log", Key: "model_a", Data: []byte(`{"action_type":"add_drift"}`)},
	)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, seqs)

	_, err = rl.Append(ctx, ports.Append{Collection: "drift", Key: "model_a", Data: []byte(`{"value":0.15}`)})
	require.NoError(t, err)

	recs, err := rl.List(ctx, "drift", "model_a", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(1), recs[0].Seq)
	assert.Equal(t, int64(3), recs[1].Seq)

	cut, err := rl.List(ctx, "drift", "", 2)
	require.NoError(t, err)
	assert.Len(t, cut, 1)

	head, err := rl.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), head)
}

func TestRecordLog_FailedBatchLeavesNothing(t *testing.T) {
	rl := openTestLog(t)
	ctx := context.Background()

	_, err := rl.Append(ctx,
		ports.Append{Collection: "bias", Key: "m", Data: []byte(`{}`)},
		ports.Append{Collection: "bias", Key: "m"},
	)
	require.Error(t, err)

	head, err := rl.Head(ctx)
	require.NoError(t, err)
	assert.Zero(t, head)
}

func TestRecordLog_ConcurrentAppendsKeepDistinctOrder(t *testing.T) {
	rl := openTestLog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := rl.Append(ctx, ports.Append{Collection: "bias", Key: "m", Data: []byte(fmt.Sprintf(`{"n":%d}`, i))})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	recs, err := rl.List(ctx, "bias", "m", 0)
	require.NoError(t, err)
	require.Len(t, recs, 10)
	for i := 1; i < len(recs); i++ {
		assert.Less(t, recs[i-1].Seq, recs[i].Seq)
	}
}

func TestRecordLog_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governance.db")
	ctx := context.Background()

	rl, err := Open(path)
	require.NoError(t, err)
	_, err = rl.Append(ctx, ports.Append{Collection: "lineage", Key: "m", Data: []byte(`{"event_type":"lineage_snapshot"}`)})
	require.NoError(t, err)
	require.NoError(t, rl.Close())

	rl, err = Open(path)
	require.NoError(t, err)
	defer rl.Close()

	recs, err := rl.List(ctx, "lineage", "m", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestOpen_PragmasApplyToEveryConnection(t *testing.T) {
	rl := openTestLog(t)
	ctx := context.Background()

	// hold two connections at once so the pool must open a second one
	conns := make([]*sql.Conn, 2)
	for i := range conns {
		c, err := rl.db.Conn(ctx)
		require.NoError(t, err)
		defer c.Close()
		conns[i] = c
	}
	for i, c := range conns {
		var timeout int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, busyTimeoutMillis, timeout, "connection %d", i)

		var mode string
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode, "connection %d", i)
	}
}
