package services

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/telemetry"
)

type PhilosophyService struct {
	repo      ports.PhilosophyRepository
	models    ports.ModelRepository
	recorder  *AuditRecorder
	completer ports.TextCompleter
	metrics   *telemetry.Metrics
}

// NewPhilosophyService creates the service. completer may be nil, in which
// case gap filling is skipped.
func NewPhilosophyService(
	repo ports.PhilosophyRepository,
	models ports.ModelRepository,
	recorder *AuditRecorder,
	completer ports.TextCompleter,
	metrics *telemetry.Metrics,
) *PhilosophyService {
	return &PhilosophyService{
		repo:      repo,
		models:    models,
		recorder:  recorder,
		completer: completer,
		metrics:   metrics,
	}
}

// Upsert creates or replaces the philosophy for its scope. With fillGaps,
// empty sections are drafted by the text completer first; completion
// failures leave the section empty.
func (s *PhilosophyService) Upsert(ctx context.Context, actor string, p *domain.GovernancePhilosophy, fillGaps bool) (*domain.GovernancePhilosophy, error) {
	return s.save(ctx, actor, p, fillGaps, false)
}

// Replace overwrites an existing philosophy. Returns ErrPhilosophyNotFound
// when the scope has none.
func (s *PhilosophyService) Replace(ctx context.Context, actor string, p *domain.GovernancePhilosophy, fillGaps bool) (*domain.GovernancePhilosophy, error) {
	return s.save(ctx, actor, p, fillGaps, true)
}

func (s *PhilosophyService) save(ctx context.Context, actor string, p *domain.GovernancePhilosophy, fillGaps, mustExist bool) (*domain.GovernancePhilosophy, error) {
	doc := *p
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if fillGaps {
		// network calls stay outside the commit lock
		s.fillGaps(ctx, &doc)
	}

	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		existing, err := s.repo.Get(ctx, doc.Key(), 0)
		switch {
		case errors.Is(err, domain.ErrPhilosophyNotFound):
			if mustExist {
				return err
			}
			existing = nil
		case err != nil:
			return err
		}

		doc.UpdatedAt = b.Now()
		if existing != nil {
			doc.CreatedAt = existing.CreatedAt
		} else {
			doc.CreatedAt = b.Now()
		}
		if err := b.Append(domain.CollectionPhilosophy, doc.Key().RecordKey(), &doc); err != nil {
			return err
		}
		if existing == nil {
			return b.Audit(domain.ActionCreatePhilosophy, domain.EntityPhilosophy, doc.ID(), doc.ModelRef(), nil, &doc)
		}
		return b.AuditChange(domain.ActionUpdatePhilosophy, domain.EntityPhilosophy, doc.ID(), doc.ModelRef(), existing, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *PhilosophyService) fillGaps(ctx context.Context, p *domain.GovernancePhilosophy) {
	empty := p.EmptySections()
	if len(empty) == 0 {
		return
	}
	if s.completer == nil {
		log.WithField("scope", p.ID()).Info("Text completion not configured, leaving empty sections as is")
		return
	}

	for _, section := range empty {
		text, err := s.completer.Complete(ctx, philosophySystemPrompt, philosophyPrompt(p, section))
		if err != nil {
			s.metrics.CompletionFailed()
			log.WithError(err).WithFields(log.Fields{
				"scope":   p.ID(),
				"section": section.Key,
			}).Warn("Failed to draft philosophy section (continuing without it)")
			continue
		}
		p.SetSection(section.Key, text)
		p.GeneratedByLLM = true
	}
}

func (s *PhilosophyService) Get(ctx context.Context, key domain.ScopeKey) (*domain.GovernancePhilosophy, error) {
	return s.repo.Get(ctx, key, 0)
}

// List returns philosophies newest first. Empty arguments match everything.
func (s *PhilosophyService) List(ctx context.Context, scope domain.PhilosophyScope, scopeRef string) ([]*domain.GovernancePhilosophy, error) {
	if scope != "" && !scope.IsValid() {
		return nil, domain.Invalid("scope", "must be one of org, business_domain, line_of_business, model")
	}
	return s.repo.List(ctx, scope, scopeRef, 0)
}

func (s *PhilosophyService) Delete(ctx context.Context, actor string, key domain.ScopeKey) error {
	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		existing, err := s.repo.Get(ctx, key, 0)
		if err != nil {
			return err
		}
		b.Delete(domain.CollectionPhilosophy, key.RecordKey())
		return b.Audit(domain.ActionDeletePhilosophy, domain.EntityPhilosophy, existing.ID(), existing.ModelRef(), existing, nil)
	})
	return err
}

// ResolveForModel returns the effective philosophy for a model.
func (s *PhilosophyService) ResolveForModel(ctx context.Context, modelID string) (*domain.ResolvedPhilosophy, error) {
	model, err := requireModel(ctx, s.models, modelID, 0)
	if err != nil {
		return nil, err
	}
	return resolvePhilosophy(ctx, s.repo, model, 0)
}

func resolvePhilosophy(ctx context.Context, repo ports.PhilosophyRepository, model *domain.AIModel, asOf int64) (*domain.ResolvedPhilosophy, error) {
	chain, err := repo.Chain(ctx, domain.ScopeChain(model), asOf)
	if err != nil {
		return nil, err
	}
	return domain.ResolvePhilosophy(model.ID, chain), nil
}
