package recordstore

import (
	"context"
	"fmt"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type lineageRepo struct {
	log ports.RecordLog
}

func NewLineageRepository(log ports.RecordLog) ports.LineageRepository {
	return &lineageRepo{log: log}
}

func (r *lineageRepo) ListByModel(ctx context.Context, modelID string, asOf int64) ([]domain.StoredLineage, error) {
	recs, err := r.log.List(ctx, domain.CollectionLineage, modelID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list lineage: %w", err)
	}
	out := make([]domain.StoredLineage, 0, len(recs))
	for _, rec := range recs {
		entry, err := decode[domain.LineageEntry](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.StoredLineage{Seq: rec.Seq, Entry: entry})
	}
	return out, nil
}
