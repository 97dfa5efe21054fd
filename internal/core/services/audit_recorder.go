package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/telemetry"
)

// AuditRecorder is the single commit path for every mutation. A mutation's
// records and its audit entry are written in one atomic append, so a failed
// audit write leaves no trace of the mutation.
type AuditRecorder struct {
	mu           sync.Mutex
	log          ports.RecordLog
	audit        ports.AuditLogRepository
	now          func() time.Time
	defaultActor string
	metrics      *telemetry.Metrics

	chainLoaded bool
	lastIndex   int64
	lastHash    string
}

func NewAuditRecorder(recordLog ports.RecordLog, audit ports.AuditLogRepository, defaultActor string, metrics *telemetry.Metrics) *AuditRecorder {
	if defaultActor == "" {
		defaultActor = domain.SystemActor
	}
	return &AuditRecorder{
		log:          recordLog,
		audit:        audit,
		now:          time.Now,
		defaultActor: defaultActor,
		metrics:      metrics,
	}
}

// WithClock replaces the time source. Used by tests.
func (r *AuditRecorder) WithClock(now func() time.Time) *AuditRecorder {
	r.now = now
	return r
}

// Now returns the recorder's current time in UTC.
func (r *AuditRecorder) Now() time.Time {
	return r.now().UTC()
}

// Commit runs build under the commit lock, then appends the batch's records
// and its audit entry atomically. An error from build is returned as is and
// nothing is written. Exactly one audit entry must be set by build.
func (r *AuditRecorder) Commit(ctx context.Context, actor string, build func(ctx context.Context, b *Batch) error) (*domain.AuditLogEntry, error) {
	if actor == "" {
		actor = r.defaultActor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadChain(ctx); err != nil {
		r.metrics.AuditFailed()
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditWriteFailed, err)
	}

	b := &Batch{now: r.Now()}
	if err := build(ctx, b); err != nil {
		return nil, err
	}
	if b.entry == nil {
		r.metrics.AuditFailed()
		return nil, fmt.Errorf("%w: mutation produced no audit entry", domain.ErrAuditWriteFailed)
	}

	entry := b.entry
	entry.Index = r.lastIndex + 1
	entry.Timestamp = b.now
	entry.UserID = actor
	entry.PrevHash = r.lastHash
	hash, err := entry.ComputeHash()
	if err != nil {
		r.metrics.AuditFailed()
		return nil, fmt.Errorf("%w: hash entry: %v", domain.ErrAuditWriteFailed, err)
	}
	entry.Hash = hash

	data, err := json.Marshal(entry)
	if err != nil {
		r.metrics.AuditFailed()
		return nil, fmt.Errorf("%w: encode entry: %v", domain.ErrAuditWriteFailed, err)
	}
	appends := append(b.appends, ports.Append{
		Collection: domain.CollectionAuditLog,
		Key:        entry.ModelID,
		Data:       data,
	})

	if _, err := r.log.Append(ctx, appends...); err != nil {
		r.metrics.AuditFailed()
		log.WithError(err).WithFields(log.Fields{
			"action":    entry.ActionType,
			"entity_id": entry.EntityID,
		}).Error("Audit commit failed, mutation rolled back")
		return nil, fmt.Errorf("%w: %v", domain.ErrAuditWriteFailed, err)
	}

	r.lastIndex = entry.Index
	r.lastHash = entry.Hash
	r.metrics.AuditCommitted(entry.ActionType)
	return entry, nil
}

func (r *AuditRecorder) loadChain(ctx context.Context) error {
	if r.chainLoaded {
		return nil
	}
	last, err := r.audit.Last(ctx)
	if err != nil {
		return err
	}
	if last != nil {
		r.lastIndex = last.Index
		r.lastHash = last.Hash
	}
	r.chainLoaded = true
	return nil
}

// ============================================================================
// Batch
// ============================================================================

var errAuditAlreadySet = errors.New("batch already has an audit entry")

// Batch collects the writes of one mutation.
type Batch struct {
	now     time.Time
	appends []ports.Append
	entry   *domain.AuditLogEntry
}

// Now is the commit timestamp shared by every record in the batch.
func (b *Batch) Now() time.Time { return b.now }

// Append adds a JSON-encoded record to collection under key.
func (b *Batch) Append(collection, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", collection, err)
	}
	b.appends = append(b.appends, ports.Append{Collection: collection, Key: key, Data: data})
	return nil
}

// Delete removes key from a versioned collection.
func (b *Batch) Delete(collection, key string) {
	b.appends = append(b.appends, ports.Append{Collection: collection, Key: key, Data: ports.Tombstone})
}

// Audit sets the batch's audit entry with full before and after values.
// Either value may be nil.
func (b *Batch) Audit(action, entityType, entityID, modelID string, oldValue, newValue any) error {
	if b.entry != nil {
		return errAuditAlreadySet
	}
	oldRaw, err := marshalOptional(oldValue)
	if err != nil {
		return err
	}
	newRaw, err := marshalOptional(newValue)
	if err != nil {
		return err
	}
	b.entry = &domain.AuditLogEntry{
		ActionType: action,
		ModelID:    modelID,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   oldRaw,
		NewValue:   newRaw,
	}
	return nil
}

// AuditChange sets the batch's audit entry for an update, keeping only the
// top-level fields that differ between oldValue and newValue.
func (b *Batch) AuditChange(action, entityType, entityID, modelID string, oldValue, newValue any) error {
	if b.entry != nil {
		return errAuditAlreadySet
	}
	oldRaw, newRaw, err := ShallowDiff(oldValue, newValue)
	if err != nil {
		return err
	}
	b.entry = &domain.AuditLogEntry{
		ActionType: action,
		ModelID:    modelID,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   oldRaw,
		NewValue:   newRaw,
	}
	return nil
}

func marshalOptional(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit value: %w", err)
	}
	return data, nil
}
