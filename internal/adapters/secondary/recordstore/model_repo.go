package recordstore

import (
	"context"
	"fmt"
	"sort"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type modelRepo struct {
	log ports.RecordLog
}

func NewModelRepository(log ports.RecordLog) ports.ModelRepository {
	return &modelRepo{log: log}
}

func (r *modelRepo) Get(ctx context.Context, id string, asOf int64) (*domain.AIModel, error) {
	if id == "" {
		return nil, domain.ErrModelNotFound
	}
	recs, err := r.log.List(ctx, domain.CollectionModels, id, asOf)
	if err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}
	rec, ok := last(recs)
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return decode[domain.AIModel](rec)
}

func (r *modelRepo) List(ctx context.Context, filter domain.ModelFilter, asOf int64) ([]*domain.AIModel, error) {
	recs, err := r.log.List(ctx, domain.CollectionModels, "", asOf)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	models := make([]*domain.AIModel, 0)
	for _, rec := range current(recs) {
		m, err := decode[domain.AIModel](rec)
		if err != nil {
			return nil, err
		}
		if filter.Matches(m) {
			models = append(models, m)
		}
	}
	sort.SliceStable(models, func(i, j int) bool {
		if !models[i].CreatedAt.Equal(models[j].CreatedAt) {
			return models[i].CreatedAt.Before(models[j].CreatedAt)
		}
		return models[i].ID < models[j].ID
	})
	return models, nil
}
