package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

type ModelService struct {
	repo     ports.ModelRepository
	recorder *AuditRecorder
}

func NewModelService(repo ports.ModelRepository, recorder *AuditRecorder) *ModelService {
	return &ModelService{repo: repo, recorder: recorder}
}

// Register adds a model to the registry. A caller-supplied id must be unused.
func (s *ModelService) Register(ctx context.Context, actor string, model *domain.AIModel) (*domain.AIModel, error) {
	m := *model
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}

	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		if m.ID == "" {
			m.ID = domain.NewModelID()
		} else if _, err := s.repo.Get(ctx, m.ID, 0); err == nil {
			return domain.ErrModelExists
		} else if !errors.Is(err, domain.ErrModelNotFound) {
			return err
		}
		m.CreatedAt = b.Now()
		m.UpdatedAt = b.Now()

		if err := b.Append(domain.CollectionModels, m.ID, &m); err != nil {
			return err
		}
		return b.Audit(domain.ActionCreateModel, domain.EntityModel, m.ID, m.ID, nil, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ModelService) Get(ctx context.Context, id string) (*domain.AIModel, error) {
	return s.repo.Get(ctx, id, 0)
}

func (s *ModelService) List(ctx context.Context, filter domain.ModelFilter) ([]*domain.AIModel, error) {
	return s.repo.List(ctx, filter, 0)
}

// ModelUpdate is a partial registry update. Nil fields are left unchanged.
type ModelUpdate struct {
	Name                  *string
	Version               *string
	ModelType             *domain.ModelType
	BusinessDomain        *domain.BusinessDomain
	LineOfBusiness        *domain.LineOfBusiness
	UseCaseCategory       *domain.UseCaseCategory
	DetailedUseCase       *string
	OwnerTeam             *string
	ProductOrProgram      *string
	Jurisdictions         *[]string
	DeploymentEnvironment *domain.DeploymentEnvironment
	DeploymentDetails     *map[string]any
	ExternalDataSources   *[]string
	GovernanceStatus      *domain.GovernanceStatus
}

func (u ModelUpdate) isEmpty() bool {
	return u == (ModelUpdate{})
}

func (u ModelUpdate) apply(m *domain.AIModel) {
	setIf(&m.Name, u.Name)
	setIf(&m.Version, u.Version)
	setIf(&m.ModelType, u.ModelType)
	setIf(&m.BusinessDomain, u.BusinessDomain)
	setIf(&m.LineOfBusiness, u.LineOfBusiness)
	setIf(&m.UseCaseCategory, u.UseCaseCategory)
	setIf(&m.DetailedUseCase, u.DetailedUseCase)
	setIf(&m.OwnerTeam, u.OwnerTeam)
	setIf(&m.ProductOrProgram, u.ProductOrProgram)
	setIf(&m.DeploymentEnvironment, u.DeploymentEnvironment)
	setIf(&m.GovernanceStatus, u.GovernanceStatus)
	if u.Jurisdictions != nil {
		m.Jurisdictions = slices.Clone(*u.Jurisdictions)
	}
	if u.ExternalDataSources != nil {
		m.ExternalDataSources = slices.Clone(*u.ExternalDataSources)
	}
	if u.DeploymentDetails != nil {
		m.DeploymentDetails = *u.DeploymentDetails
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Update applies a partial update and records the changed fields.
func (s *ModelService) Update(ctx context.Context, actor, id string, update ModelUpdate) (*domain.AIModel, error) {
	if update.isEmpty() {
		return nil, domain.ErrNoUpdates
	}

	var updated domain.AIModel
	_, err := s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		existing, err := s.repo.Get(ctx, id, 0)
		if err != nil {
			return err
		}
		updated = *existing
		update.apply(&updated)
		updated.Normalize()
		if err := updated.Validate(); err != nil {
			return err
		}
		updated.UpdatedAt = b.Now()

		if err := b.Append(domain.CollectionModels, id, &updated); err != nil {
			return err
		}
		return b.AuditChange(domain.ActionUpdateModel, domain.EntityModel, id, id, existing, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// requireModel resolves a model id inside a commit or read path.
func requireModel(ctx context.Context, repo ports.ModelRepository, id string, asOf int64) (*domain.AIModel, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrModelNotFound
	}
	return repo.Get(ctx, id, asOf)
}
