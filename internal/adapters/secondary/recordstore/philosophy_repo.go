package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type philosophyRepo struct {
	log ports.RecordLog
}

func NewPhilosophyRepository(log ports.RecordLog) ports.PhilosophyRepository {
	return &philosophyRepo{log: log}
}

func (r *philosophyRepo) Get(ctx context.Context, key domain.ScopeKey, asOf int64) (*domain.GovernancePhilosophy, error) {
	recs, err := r.log.List(ctx, domain.CollectionPhilosophy, key.RecordKey(), asOf)
	if err != nil {
		return nil, fmt.Errorf("get philosophy: %w", err)
	}
	rec, ok := last(recs)
	if !ok {
		return nil, domain.ErrPhilosophyNotFound
	}
	return decode[domain.GovernancePhilosophy](rec)
}

func (r *philosophyRepo) List(ctx context.Context, scope domain.PhilosophyScope, scopeRef string, asOf int64) ([]*domain.GovernancePhilosophy, error) {
	recs, err := r.log.List(ctx, domain.CollectionPhilosophy, "", asOf)
	if err != nil {
		return nil, fmt.Errorf("list philosophy: %w", err)
	}
	out := make([]*domain.GovernancePhilosophy, 0)
	for _, rec := range current(recs) {
		p, err := decode[domain.GovernancePhilosophy](rec)
		if err != nil {
			return nil, err
		}
		if scope != "" && p.Scope != scope {
			continue
		}
		if scopeRef != "" && p.ScopeRef != scopeRef {
			continue
		}
		out = append(out, p)
	}
	// newest first
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

func (r *philosophyRepo) Chain(ctx context.Context, keys []domain.ScopeKey, asOf int64) ([]*domain.GovernancePhilosophy, error) {
	out := make([]*domain.GovernancePhilosophy, len(keys))
	for i, k := range keys {
		p, err := r.Get(ctx, k, asOf)
		if err == nil {
			out[i] = p
			continue
		}
		if !errors.Is(err, domain.ErrPhilosophyNotFound) {
			return nil, err
		}
	}
	return out, nil
}
