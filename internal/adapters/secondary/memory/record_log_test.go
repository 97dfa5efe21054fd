package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "model-governance-service/internal/core/ports/output"
)

func TestRecordLog_ListFiltersByKeyAndCutoff(t *testing.T) {
	l := NewRecordLog()
	ctx := context.Background()

	_, err := l.Append(ctx,
		ports.Append{Collection: "bias", Key: "a", Data: []byte(`1`)},
		ports.Append{Collection: "bias", Key: "b", Data: []byte(`2`)},
	)
	require.NoError(t, err)
	_, err = l.Append(ctx, ports.Append{Collection: "bias", Key: "a", Data: []byte(`3`)})
	require.NoError(t, err)

	recs, err := l.List(ctx, "bias", "a", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []int64{1, 3}, []int64{recs[0].Seq, recs[1].Seq})

	recs, err = l.List(ctx, "bias", "", 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = l.List(ctx, "drift", "", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecordLog_StoredDataIsCopied(t *testing.T) {
	l := NewRecordLog()
	ctx := context.Background()
	payload := []byte(`{"v":1}`)

	_, err := l.Append(ctx, ports.Append{Collection: "bias", Key: "a", Data: payload})
	require.NoError(t, err)
	payload[2] = 'X'

	recs, err := l.List(ctx, "bias", "a", 0)
	require.NoError(t, err)
	recs[0].Data[0] = 'Y'

	again, err := l.List(ctx, "bias", "a", 0)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(again[0].Data))
}

func TestRecordLog_RestoreRequiresAscendingSeqs(t *testing.T) {
	l := NewRecordLog()
	require.NoError(t, l.Restore(
		ports.StoredRecord{Seq: 5, Collection: "bias", Key: "a", Data: []byte(`1`)},
		ports.StoredRecord{Seq: 9, Collection: "drift", Key: "a", Data: []byte(`2`)},
	))

	head, err := l.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), head)

	assert.Error(t, l.Restore(ports.StoredRecord{Seq: 9, Collection: "bias", Key: "a", Data: []byte(`3`)}))
}

func TestValidateAppends(t *testing.T) {
	tests := []struct {
		name    string
		entries []ports.Append
		wantErr bool
	}{
		{"ok", []ports.Append{{Collection: "audit_log", Data: []byte(`{}`)}}, false},
		{"empty batch", nil, true},
		{"uppercase collection", []ports.Append{{Collection: "Bias", Data: []byte(`{}`)}}, true},
		{"path collection", []ports.Append{{Collection: "a/b", Data: []byte(`{}`)}}, true},
		{"empty payload", []ports.Append{{Collection: "bias"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAppends(tt.entries)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
