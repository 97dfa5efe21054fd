package ports

import (
	"context"

	"model-governance-service/internal/core/domain"
)

// Every read takes an asOf sequence cutoff; asOf <= 0 reads the current state.

type ModelRepository interface {
	Get(ctx context.Context, id string, asOf int64) (*domain.AIModel, error)
	List(ctx context.Context, filter domain.ModelFilter, asOf int64) ([]*domain.AIModel, error)
}

type EvaluationRepository interface {
	// ListByModel returns records in append order.
	ListByModel(ctx context.Context, kind domain.EvaluationKind, modelID string, asOf int64) ([]domain.StoredEvaluation, error)
	// LatestByModel returns the record with the greatest timestamp, ties to
	// the later append, or nil when the stream is empty.
	LatestByModel(ctx context.Context, kind domain.EvaluationKind, modelID string, asOf int64) (*domain.StoredEvaluation, error)
}

type LineageRepository interface {
	ListByModel(ctx context.Context, modelID string, asOf int64) ([]domain.StoredLineage, error)
}

type ControlCatalogRepository interface {
	List(ctx context.Context, asOf int64) ([]*domain.ControlCatalogEntry, error)
	Get(ctx context.Context, controlID string, asOf int64) (*domain.ControlCatalogEntry, error)
}

type PhilosophyRepository interface {
	Get(ctx context.Context, key domain.ScopeKey, asOf int64) (*domain.GovernancePhilosophy, error)
	List(ctx context.Context, scope domain.PhilosophyScope, scopeRef string, asOf int64) ([]*domain.GovernancePhilosophy, error)
	// Chain looks up every key, returning nil for keys with no document.
	Chain(ctx context.Context, keys []domain.ScopeKey, asOf int64) ([]*domain.GovernancePhilosophy, error)
}

type EvidencePackRepository interface {
	Get(ctx context.Context, id string) (*domain.EvidencePack, error)
	List(ctx context.Context, modelID string) ([]*domain.EvidencePack, error)
}

type AuditLogRepository interface {
	// List returns matching entries in commit order, ignoring filter.Limit.
	List(ctx context.Context, filter domain.AuditFilter, asOf int64) ([]*domain.AuditLogEntry, error)
	// Last returns the most recent entry, or nil for an empty log.
	Last(ctx context.Context) (*domain.AuditLogEntry, error)
}
