package services

import (
	"context"
	"errors"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

// ControlService manages the control catalog. Built-in controls can be
// overridden or deleted like any other entry.
type ControlService struct {
	repo     ports.ControlCatalogRepository
	recorder *AuditRecorder
}

func NewControlService(repo ports.ControlCatalogRepository, recorder *AuditRecorder) *ControlService {
	return &ControlService{repo: repo, recorder: recorder}
}

func (s *ControlService) List(ctx context.Context) ([]*domain.ControlCatalogEntry, error) {
	return s.repo.List(ctx, 0)
}

func (s *ControlService) Get(ctx context.Context, id string) (*domain.ControlCatalogEntry, error) {
	return s.repo.Get(ctx, id, 0)
}

func (s *ControlService) Create(ctx context.Context, actor string, control *domain.ControlCatalogEntry) (*domain.ControlCatalogEntry, error) {
	c := *control
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		if _, err := s.repo.Get(ctx, c.ControlID, 0); err == nil {
			return domain.ErrControlExists
		} else if !errors.Is(err, domain.ErrControlNotFound) {
			return err
		}
		if err := b.Append(domain.CollectionControls, c.ControlID, &c); err != nil {
			return err
		}
		return b.Audit(domain.ActionCreateControl, domain.EntityControl, c.ControlID, "", nil, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ControlService) Update(ctx context.Context, actor, id string, update domain.ControlUpdate) (*domain.ControlCatalogEntry, error) {
	if update.IsEmpty() {
		return nil, domain.ErrNoUpdates
	}

	var updated domain.ControlCatalogEntry
	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		existing, err := s.repo.Get(ctx, id, 0)
		if err != nil {
			return err
		}
		updated = update.Apply(*existing)
		updated.Normalize()
		if err := updated.Validate(); err != nil {
			return err
		}
		if err := b.Append(domain.CollectionControls, id, &updated); err != nil {
			return err
		}
		return b.AuditChange(domain.ActionUpdateControl, domain.EntityControl, id, "", existing, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a control from the catalog. Existing evaluations that
// reference it are kept.
func (s *ControlService) Delete(ctx context.Context, actor, id string) error {
	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		existing, err := s.repo.Get(ctx, id, 0)
		if err != nil {
			return err
		}
		b.Delete(domain.CollectionControls, id)
		return b.Audit(domain.ActionDeleteControl, domain.EntityControl, id, "", existing, nil)
	})
	return err
}
