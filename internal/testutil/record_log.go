package testutil

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	ports "model-governance-service/internal/core/ports/output"
)

// ErrInjected is returned by FaultyRecordLog when a fault is armed.
var ErrInjected = errors.New("injected storage failure")

// FaultyRecordLog wraps a RecordLog and fails appends that touch a chosen
// collection, or every append once FailAll is set.
type FaultyRecordLog struct {
	ports.RecordLog
	failCollection atomic.Value
	failAll        atomic.Bool
}

func NewFaultyRecordLog(inner ports.RecordLog) *FaultyRecordLog {
	l := &FaultyRecordLog{RecordLog: inner}
	l.failCollection.Store("")
	return l
}

// FailCollection makes appends containing collection fail. "" disarms it.
func (l *FaultyRecordLog) FailCollection(collection string) {
	l.failCollection.Store(collection)
}

func (l *FaultyRecordLog) FailAll(fail bool) {
	l.failAll.Store(fail)
}

func (l *FaultyRecordLog) Append(ctx context.Context, entries ...ports.Append) ([]int64, error) {
	if l.failAll.Load() {
		return nil, ErrInjected
	}
	if c := l.failCollection.Load().(string); c != "" {
		if slices.ContainsFunc(entries, func(a ports.Append) bool { return a.Collection == c }) {
			return nil, ErrInjected
		}
	}
	return l.RecordLog.Append(ctx, entries...)
}
