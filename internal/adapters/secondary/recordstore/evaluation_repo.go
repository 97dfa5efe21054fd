package recordstore

import (
	"context"
	"fmt"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type evaluationRepo struct {
	log ports.RecordLog
}

func NewEvaluationRepository(log ports.RecordLog) ports.EvaluationRepository {
	return &evaluationRepo{log: log}
}

func (r *evaluationRepo) ListByModel(ctx context.Context, kind domain.EvaluationKind, modelID string, asOf int64) ([]domain.StoredEvaluation, error) {
	if !kind.IsValid() {
		return nil, domain.Invalid("kind", fmt.Sprintf("unknown evaluation kind %q", kind))
	}
	recs, err := r.log.List(ctx, kind.Collection(), modelID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}
	out := make([]domain.StoredEvaluation, 0, len(recs))
	for _, rec := range recs {
		ev, err := domain.DecodeEvaluation(kind, rec.Data)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Seq, err)
		}
		out = append(out, domain.StoredEvaluation{Seq: rec.Seq, Record: ev})
	}
	return out, nil
}

func (r *evaluationRepo) LatestByModel(ctx context.Context, kind domain.EvaluationKind, modelID string, asOf int64) (*domain.StoredEvaluation, error) {
	all, err := r.ListByModel(ctx, kind, modelID, asOf)
	if err != nil {
		return nil, err
	}
	return domain.LatestEvaluation(all), nil
}
