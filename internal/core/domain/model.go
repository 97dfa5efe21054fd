package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

type ModelType string

const (
	ModelTypeLLM            ModelType = "llm"
	ModelTypeRAG            ModelType = "rag"
	ModelTypeAgent          ModelType = "agent"
	ModelTypeClassifier     ModelType = "classifier"
	ModelTypeRegressor      ModelType = "regressor"
	ModelTypeRulesPlusModel ModelType = "rules_plus_model"
)

func (t ModelType) IsValid() bool {
	switch t {
	case ModelTypeLLM, ModelTypeRAG, ModelTypeAgent, ModelTypeClassifier, ModelTypeRegressor, ModelTypeRulesPlusModel:
		return true
	}
	return false
}

type BusinessDomain string

const (
	BusinessDomainPCPersonal   BusinessDomain = "P&C_Personal"
	BusinessDomainPCCommercial BusinessDomain = "P&C_Commercial"
	BusinessDomainReinsurance  BusinessDomain = "Reinsurance"
	BusinessDomainSpecialty    BusinessDomain = "Specialty"
)

func (d BusinessDomain) IsValid() bool {
	switch d {
	case BusinessDomainPCPersonal, BusinessDomainPCCommercial, BusinessDomainReinsurance, BusinessDomainSpecialty:
		return true
	}
	return false
}

type LineOfBusiness string

const (
	LineOfBusinessPersonalAuto   LineOfBusiness = "Personal Auto"
	LineOfBusinessHomeowners     LineOfBusiness = "Homeowners"
	LineOfBusinessCommercialAuto LineOfBusiness = "Commercial Auto"
	LineOfBusinessWorkersComp    LineOfBusiness = "Workers_Compensation"
	LineOfBusinessGL             LineOfBusiness = "GL"
	LineOfBusinessProperty       LineOfBusiness = "Property"
)

func (l LineOfBusiness) IsValid() bool {
	switch l {
	case LineOfBusinessPersonalAuto, LineOfBusinessHomeowners, LineOfBusinessCommercialAuto,
		LineOfBusinessWorkersComp, LineOfBusinessGL, LineOfBusinessProperty:
		return true
	}
	return false
}

type UseCaseCategory string

const (
	UseCasePricing            UseCaseCategory = "Pricing"
	UseCaseUnderwriting       UseCaseCategory = "Underwriting"
	UseCaseClaims             UseCaseCategory = "Claims"
	UseCaseFraud              UseCaseCategory = "Fraud"
	UseCaseMarketing          UseCaseCategory = "Marketing"
	UseCaseCustomerService    UseCaseCategory = "Customer_Service"
	UseCaseOperationalCopilot UseCaseCategory = "Operational_Copilot"
)

func (u UseCaseCategory) IsValid() bool {
	switch u {
	case UseCasePricing, UseCaseUnderwriting, UseCaseClaims, UseCaseFraud,
		UseCaseMarketing, UseCaseCustomerService, UseCaseOperationalCopilot:
		return true
	}
	return false
}

// IsHighStakes reports whether decisions in this category directly affect
// pricing, eligibility or claim outcomes.
func (u UseCaseCategory) IsHighStakes() bool {
	return u == UseCasePricing || u == UseCaseUnderwriting || u == UseCaseClaims
}

type GovernanceStatus string

const (
	GovernanceStatusDraft                GovernanceStatus = "draft"
	GovernanceStatusInReview             GovernanceStatus = "in_review"
	GovernanceStatusApprovedForProd      GovernanceStatus = "approved_for_prod"
	GovernanceStatusTemporarilySuspended GovernanceStatus = "temporarily_suspended"
	GovernanceStatusRetired              GovernanceStatus = "retired"
)

func (s GovernanceStatus) IsValid() bool {
	switch s {
	case GovernanceStatusDraft, GovernanceStatusInReview, GovernanceStatusApprovedForProd,
		GovernanceStatusTemporarilySuspended, GovernanceStatusRetired:
		return true
	}
	return false
}

type DeploymentEnvironment string

const (
	EnvironmentDev  DeploymentEnvironment = "dev"
	EnvironmentTest DeploymentEnvironment = "test"
	EnvironmentProd DeploymentEnvironment = "prod"
)

func (e DeploymentEnvironment) IsValid() bool {
	return e == EnvironmentDev || e == EnvironmentTest || e == EnvironmentProd
}

// ============================================================================
// Entities
// ============================================================================

// AIModel is a registry entry. Evaluation records, packs and audit entries
// reference it by ID; it owns none of them.
type AIModel struct {
	ID                    string                `json:"model_id"`
	Name                  string                `json:"name"`
	Version               string                `json:"version"`
	ModelType             ModelType             `json:"model_type"`
	BusinessDomain        BusinessDomain        `json:"business_domain"`
	LineOfBusiness        LineOfBusiness        `json:"line_of_business"`
	UseCaseCategory       UseCaseCategory       `json:"use_case_category"`
	DetailedUseCase       string                `json:"detailed_use_case"`
	OwnerTeam             string                `json:"owner_team"`
	ProductOrProgram      string                `json:"product_or_program"`
	Jurisdictions         []string              `json:"jurisdictions"`
	DeploymentEnvironment DeploymentEnvironment `json:"deployment_environment"`
	DeploymentDetails     map[string]any        `json:"deployment_details"`
	ExternalDataSources   []string              `json:"external_data_sources"`
	GovernanceStatus      GovernanceStatus      `json:"governance_status"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// NewModelID returns a registry id of the form model_<12 hex chars>.
func NewModelID() string {
	return "model_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// IsProduction reports whether the model is deployed to production.
func (m *AIModel) IsProduction() bool {
	return m.DeploymentEnvironment == EnvironmentProd
}

// Validate checks required fields and closed enumerations.
func (m *AIModel) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(m.Version) == "" {
		return Invalid("version", "is required")
	}
	if !m.ModelType.IsValid() {
		return Invalid("model_type", fmt.Sprintf("unknown value %q", m.ModelType))
	}
	if !m.BusinessDomain.IsValid() {
		return Invalid("business_domain", fmt.Sprintf("unknown value %q", m.BusinessDomain))
	}
	if !m.LineOfBusiness.IsValid() {
		return Invalid("line_of_business", fmt.Sprintf("unknown value %q", m.LineOfBusiness))
	}
	if !m.UseCaseCategory.IsValid() {
		return Invalid("use_case_category", fmt.Sprintf("unknown value %q", m.UseCaseCategory))
	}
	if !m.DeploymentEnvironment.IsValid() {
		return Invalid("deployment_environment", fmt.Sprintf("unknown value %q", m.DeploymentEnvironment))
	}
	if !m.GovernanceStatus.IsValid() {
		return Invalid("governance_status", fmt.Sprintf("unknown value %q", m.GovernanceStatus))
	}
	for _, j := range m.Jurisdictions {
		if strings.TrimSpace(j) == "" {
			return Invalid("jurisdictions", "must not contain empty codes")
		}
	}
	return nil
}

// Normalize fills nil collections so that stored and rendered forms are stable.
func (m *AIModel) Normalize() {
	if m.Jurisdictions == nil {
		m.Jurisdictions = []string{}
	}
	if m.ExternalDataSources == nil {
		m.ExternalDataSources = []string{}
	}
	if m.DeploymentDetails == nil {
		m.DeploymentDetails = map[string]any{}
	}
	if m.GovernanceStatus == "" {
		m.GovernanceStatus = GovernanceStatusDraft
	}
}

// ModelFilter narrows registry listings. Empty fields match everything.
type ModelFilter struct {
	BusinessDomain   BusinessDomain
	LineOfBusiness   LineOfBusiness
	UseCaseCategory  UseCaseCategory
	GovernanceStatus GovernanceStatus
	Jurisdiction     string
}

// Matches reports whether m passes every non-empty filter field.
func (f ModelFilter) Matches(m *AIModel) bool {
	if f.BusinessDomain != "" && m.BusinessDomain != f.BusinessDomain {
		return false
	}
	if f.LineOfBusiness != "" && m.LineOfBusiness != f.LineOfBusiness {
		return false
	}
	if f.UseCaseCategory != "" && m.UseCaseCategory != f.UseCaseCategory {
		return false
	}
	if f.GovernanceStatus != "" && m.GovernanceStatus != f.GovernanceStatus {
		return false
	}
	if f.Jurisdiction != "" && !slices.Contains(m.Jurisdictions, f.Jurisdiction) {
		return false
	}
	return true
}
