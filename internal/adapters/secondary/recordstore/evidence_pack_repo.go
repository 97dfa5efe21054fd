package recordstore

import (
	"context"
	"fmt"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

// Pack metadata records are keyed by model id.
type evidencePackRepo struct {
	log ports.RecordLog
}

func NewEvidencePackRepository(log ports.RecordLog) ports.EvidencePackRepository {
	return &evidencePackRepo{log: log}
}

func (r *evidencePackRepo) Get(ctx context.Context, id string) (*domain.EvidencePack, error) {
	packs, err := r.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range packs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrEvidencePackNotFound
}

func (r *evidencePackRepo) List(ctx context.Context, modelID string) ([]*domain.EvidencePack, error) {
	recs, err := r.log.List(ctx, domain.CollectionEvidencePacks, modelID, 0)
	if err != nil {
		return nil, fmt.Errorf("list evidence packs: %w", err)
	}
	out := make([]*domain.EvidencePack, 0, len(recs))
	for _, rec := range recs {
		p, err := decode[domain.EvidencePack](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
