package dto

import (
	"model-governance-service/internal/core/domain"
	"model-governance-service/internal/core/services"
)

type CreateModelRequest struct {
	Name                  string         `json:"name" binding:"required,max=200"`
	Version               string         `json:"version" binding:"required"`
	ModelType             string         `json:"model_type" binding:"required"`
	BusinessDomain        string         `json:"business_domain" binding:"required"`
	LineOfBusiness        string         `json:"line_of_business" binding:"required"`
	UseCaseCategory       string         `json:"use_case_category" binding:"required"`
	DetailedUseCase       string         `json:"detailed_use_case"`
	OwnerTeam             string         `json:"owner_team"`
	ProductOrProgram      string         `json:"product_or_program"`
	Jurisdictions         []string       `json:"jurisdictions"`
	DeploymentEnvironment string         `json:"deployment_environment" binding:"required"`
	DeploymentDetails     map[string]any `json:"deployment_details"`
	ExternalDataSources   []string       `json:"external_data_sources"`
	GovernanceStatus      string         `json:"governance_status"`
}

func (r CreateModelRequest) ToDomain() *domain.AIModel {
	return &domain.AIModel{
		Name:                  r.Name,
		Version:               r.Version,
		ModelType:             domain.ModelType(r.ModelType),
		BusinessDomain:        domain.BusinessDomain(r.BusinessDomain),
		LineOfBusiness:        domain.LineOfBusiness(r.LineOfBusiness),
		UseCaseCategory:       domain.UseCaseCategory(r.UseCaseCategory),
		DetailedUseCase:       r.DetailedUseCase,
		OwnerTeam:             r.OwnerTeam,
		ProductOrProgram:      r.ProductOrProgram,
		Jurisdictions:         r.Jurisdictions,
		DeploymentEnvironment: domain.DeploymentEnvironment(r.DeploymentEnvironment),
		DeploymentDetails:     r.DeploymentDetails,
		ExternalDataSources:   r.ExternalDataSources,
		GovernanceStatus:      domain.GovernanceStatus(r.GovernanceStatus),
	}
}

type UpdateModelRequest struct {
	Name                  *string         `json:"name"`
	Version               *string         `json:"version"`
	ModelType             *string         `json:"model_type"`
	BusinessDomain        *string         `json:"business_domain"`
	LineOfBusiness        *string         `json:"line_of_business"`
	UseCaseCategory       *string         `json:"use_case_category"`
	DetailedUseCase       *string         `json:"detailed_use_case"`
	OwnerTeam             *string         `json:"owner_team"`
	ProductOrProgram      *string         `json:"product_or_program"`
	Jurisdictions         *[]string       `json:"jurisdictions"`
	DeploymentEnvironment *string         `json:"deployment_environment"`
	DeploymentDetails     *map[string]any `json:"deployment_details"`
	ExternalDataSources   *[]string       `json:"external_data_sources"`
	GovernanceStatus      *string         `json:"governance_status"`
}

func (r UpdateModelRequest) ToModelUpdate() services.ModelUpdate {
	return services.ModelUpdate{
		Name:                  r.Name,
		Version:               r.Version,
		ModelType:             convertPtr[domain.ModelType](r.ModelType),
		BusinessDomain:        convertPtr[domain.BusinessDomain](r.BusinessDomain),
		LineOfBusiness:        convertPtr[domain.LineOfBusiness](r.LineOfBusiness),
		UseCaseCategory:       convertPtr[domain.UseCaseCategory](r.UseCaseCategory),
		DetailedUseCase:       r.DetailedUseCase,
		OwnerTeam:             r.OwnerTeam,
		ProductOrProgram:      r.ProductOrProgram,
		Jurisdictions:         r.Jurisdictions,
		DeploymentEnvironment: convertPtr[domain.DeploymentEnvironment](r.DeploymentEnvironment),
		DeploymentDetails:     r.DeploymentDetails,
		ExternalDataSources:   r.ExternalDataSources,
		GovernanceStatus:      convertPtr[domain.GovernanceStatus](r.GovernanceStatus),
	}
}

// convertPtr converts an optional string into an optional enum value.
func convertPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

// ListResponse wraps every collection endpoint.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}
