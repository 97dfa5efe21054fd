package dto

import (
	"model-governance-service/internal/core/domain"
)

type PhilosophyRequest struct {
	Scope                                     string `json:"scope" binding:"required"`
	ScopeRef                                  string `json:"scope_ref" binding:"required"`
	RiskAppetite                              string `json:"risk_appetite"`
	FairnessAndUnfairDiscriminationPrinciples string `json:"fairness_and_unfair_discrimination_principles"`
	ExternalDataAndVendorControls             string `json:"external_data_and_vendor_controls"`
	RegulatoryAlignmentPrinciples             string `json:"regulatory_alignment_principles"`
	SafetyAndCustomerProtectionPrinciples     string `json:"safety_and_customer_protection_principles"`
	ExplainabilityAndCustomerCommunication    string `json:"explainability_and_customer_communication"`
	AuditabilityAndDOIExamReadiness           string `json:"auditability_and_DOI_exam_readiness"`
	LifecycleGovernance                       string `json:"lifecycle_governance"`
	SourcePromptRef                           string `json:"source_prompt_ref"`
}

func (r PhilosophyRequest) ToDomain() *domain.GovernancePhilosophy {
	return &domain.GovernancePhilosophy{
		Scope:        domain.PhilosophyScope(r.Scope),
		ScopeRef:     r.ScopeRef,
		RiskAppetite: r.RiskAppetite,
		FairnessAndUnfairDiscriminationPrinciples: r.FairnessAndUnfairDiscriminationPrinciples,
		ExternalDataAndVendorControls:             r.ExternalDataAndVendorControls,
		RegulatoryAlignmentPrinciples:             r.RegulatoryAlignmentPrinciples,
		SafetyAndCustomerProtectionPrinciples:     r.SafetyAndCustomerProtectionPrinciples,
		ExplainabilityAndCustomerCommunication:    r.ExplainabilityAndCustomerCommunication,
		AuditabilityAndDOIExamReadiness:           r.AuditabilityAndDOIExamReadiness,
		LifecycleGovernance:                       r.LifecycleGovernance,
		SourcePromptRef:                           r.SourcePromptRef,
	}
}

// ReplacePhilosophyRequest is the body of a PUT, where scope and scope_ref
// come from the path.
type ReplacePhilosophyRequest struct {
	RiskAppetite                              string `json:"risk_appetite"`
	FairnessAndUnfairDiscriminationPrinciples string `json:"fairness_and_unfair_discrimination_principles"`
	ExternalDataAndVendorControls             string `json:"external_data_and_vendor_controls"`
	RegulatoryAlignmentPrinciples             string `json:"regulatory_alignment_principles"`
	SafetyAndCustomerProtectionPrinciples     string `json:"safety_and_customer_protection_principles"`
	ExplainabilityAndCustomerCommunication    string `json:"explainability_and_customer_communication"`
	AuditabilityAndDOIExamReadiness           string `json:"auditability_and_DOI_exam_readiness"`
	LifecycleGovernance                       string `json:"lifecycle_governance"`
	SourcePromptRef                           string `json:"source_prompt_ref"`
}

func (r ReplacePhilosophyRequest) ToDomain(scope, scopeRef string) *domain.GovernancePhilosophy {
	return PhilosophyRequest{
		Scope:        scope,
		ScopeRef:     scopeRef,
		RiskAppetite: r.RiskAppetite,
		FairnessAndUnfairDiscriminationPrinciples: r.FairnessAndUnfairDiscriminationPrinciples,
		ExternalDataAndVendorControls:             r.ExternalDataAndVendorControls,
		RegulatoryAlignmentPrinciples:             r.RegulatoryAlignmentPrinciples,
		SafetyAndCustomerProtectionPrinciples:     r.SafetyAndCustomerProtectionPrinciples,
		ExplainabilityAndCustomerCommunication:    r.ExplainabilityAndCustomerCommunication,
		AuditabilityAndDOIExamReadiness:           r.AuditabilityAndDOIExamReadiness,
		LifecycleGovernance:                       r.LifecycleGovernance,
		SourcePromptRef:                           r.SourcePromptRef,
	}.ToDomain()
}
