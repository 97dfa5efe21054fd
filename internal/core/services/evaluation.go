package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/telemetry"
)

// EvaluationService appends and reads the append-only evaluation streams.
// There is no update or delete: a correction is a new record.
type EvaluationService struct {
	models   ports.ModelRepository
	repo     ports.EvaluationRepository
	controls ports.ControlCatalogRepository
	recorder *AuditRecorder
	metrics  *telemetry.Metrics
}

func NewEvaluationService(
	models ports.ModelRepository,
	repo ports.EvaluationRepository,
	controls ports.ControlCatalogRepository,
	recorder *AuditRecorder,
	metrics *telemetry.Metrics,
) *EvaluationService {
	return &EvaluationService{
		models:   models,
		repo:     repo,
		controls: controls,
		recorder: recorder,
		metrics:  metrics,
	}
}

// Append validates rec, binds it to modelID and appends it with its audit
// entry. A malformed record is rejected before anything is written.
func (s *EvaluationService) Append(ctx context.Context, actor, modelID string, rec domain.EvaluationRecord) (domain.EvaluationRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if _, err := requireModel(ctx, s.models, modelID, 0); err != nil {
		return nil, err
	}
	if c, ok := rec.(*domain.ControlEvaluation); ok {
		if err := s.checkControl(ctx, c.ControlID); err != nil {
			return nil, err
		}
	}
	if err := s.commit(ctx, actor, modelID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AppendControlEvaluations upserts several control statuses. Every entry is
// validated before the first is written; each is then committed with its own
// audit entry.
func (s *EvaluationService) AppendControlEvaluations(ctx context.Context, actor, modelID string, evals []*domain.ControlEvaluation) ([]*domain.ControlEvaluation, error) {
	if len(evals) == 0 {
		return nil, domain.Invalid("evaluations", "at least one evaluation is required")
	}
	if _, err := requireModel(ctx, s.models, modelID, 0); err != nil {
		return nil, err
	}
	for i, e := range evals {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("evaluation %d: %w", i, err)
		}
		if err := s.checkControl(ctx, e.ControlID); err != nil {
			return nil, fmt.Errorf("evaluation %d: %w", i, err)
		}
	}

	out := make([]*domain.ControlEvaluation, 0, len(evals))
	for _, e := range evals {
		if err := s.commit(ctx, actor, modelID, e); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *EvaluationService) checkControl(ctx context.Context, controlID string) error {
	if _, err := s.controls.Get(ctx, controlID, 0); err != nil {
		if isNotFound(err) {
			return domain.Invalid("control_id", fmt.Sprintf("unknown control %q", controlID))
		}
		return err
	}
	return nil
}

func (s *EvaluationService) commit(ctx context.Context, actor, modelID string, rec domain.EvaluationRecord) error {
	kind := rec.Kind()
	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		domain.Bind(rec, modelID, b.Now())
		if err := b.Append(kind.Collection(), modelID, rec); err != nil {
			return err
		}
		return b.Audit(kind.AuditAction(), string(kind), evaluationEntityID(modelID, rec), modelID, nil, rec)
	})
	if err != nil {
		return err
	}
	s.metrics.EvaluationAppended(string(kind))
	log.WithFields(log.Fields{
		"model_id": modelID,
		"kind":     kind,
	}).Debug("Evaluation appended")
	return nil
}

func evaluationEntityID(modelID string, rec domain.EvaluationRecord) string {
	if c, ok := rec.(*domain.ControlEvaluation); ok {
		return modelID + "_" + c.ControlID
	}
	return modelID
}

// ListByModel returns a model's records of one kind in append order.
func (s *EvaluationService) ListByModel(ctx context.Context, kind domain.EvaluationKind, modelID string) ([]domain.EvaluationRecord, error) {
	if _, err := requireModel(ctx, s.models, modelID, 0); err != nil {
		return nil, err
	}
	stored, err := s.repo.ListByModel(ctx, kind, modelID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.EvaluationRecord, 0, len(stored))
	for _, st := range stored {
		out = append(out, st.Record)
	}
	return out, nil
}

// LatestByModel returns the newest record of one kind, or nil when the
// stream is empty.
func (s *EvaluationService) LatestByModel(ctx context.Context, kind domain.EvaluationKind, modelID string) (domain.EvaluationRecord, error) {
	if _, err := requireModel(ctx, s.models, modelID, 0); err != nil {
		return nil, err
	}
	latest, err := s.repo.LatestByModel(ctx, kind, modelID, 0)
	if err != nil || latest == nil {
		return nil, err
	}
	return latest.Record, nil
}
