package services

import (
	"context"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type LineageService struct {
	models   ports.ModelRepository
	repo     ports.LineageRepository
	recorder *AuditRecorder
}

func NewLineageService(models ports.ModelRepository, repo ports.LineageRepository, recorder *AuditRecorder) *LineageService {
	return &LineageService{models: models, repo: repo, recorder: recorder}
}

// Append records a lineage snapshot for a model.
func (s *LineageService) Append(ctx context.Context, actor, modelID string, entry *domain.LineageEntry) (*domain.LineageEntry, error) {
	e := *entry
	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		if _, err := requireModel(ctx, s.models, modelID, 0); err != nil {
			return err
		}
		e.Bind(modelID, b.Now())
		if err := b.Append(domain.CollectionLineage, modelID, &e); err != nil {
			return err
		}
		return b.Audit(domain.ActionAddLineage, domain.EntityLineage, modelID, modelID, nil, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *LineageService) List(ctx context.Context, modelID string) ([]*domain.LineageEntry, error) {
	if _, err := requireModel(ctx, s.models, modelID, 0); err != nil {
		return nil, err
	}
	stored, err := s.repo.ListByModel(ctx, modelID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.LineageEntry, 0, len(stored))
	for _, l := range stored {
		out = append(out, l.Entry)
	}
	return out, nil
}
