package domain

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// Governance Philosophy
// ============================================================================

type PhilosophyScope string

const (
	ScopeOrg            PhilosophyScope = "org"
	ScopeBusinessDomain PhilosophyScope = "business_domain"
	ScopeLineOfBusiness PhilosophyScope = "line_of_business"
	ScopeModel          PhilosophyScope = "model"
)

func (s PhilosophyScope) IsValid() bool {
	switch s {
	case ScopeOrg, ScopeBusinessDomain, ScopeLineOfBusiness, ScopeModel:
		return true
	}
	return false
}

// OrgScopeRef is the scope_ref of the organization-wide philosophy.
const OrgScopeRef = "enterprise"

// PhilosophySection names one of the eight philosophy sections.
type PhilosophySection struct {
	Key   string
	Title string
}

// PhilosophySections lists the sections in document order.
var PhilosophySections = []PhilosophySection{
	{Key: "risk_appetite", Title: "Risk Appetite"},
	{Key: "fairness_and_unfair_discrimination_principles", Title: "Fairness and Unfair Discrimination Principles"},
	{Key: "external_data_and_vendor_controls", Title: "External Data and Vendor Controls"},
	{Key: "regulatory_alignment_principles", Title: "Regulatory Alignment Principles"},
	{Key: "safety_and_customer_protection_principles", Title: "Safety and Customer Protection Principles"},
	{Key: "explainability_and_customer_communication", Title: "Explainability and Customer Communication"},
	{Key: "auditability_and_DOI_exam_readiness", Title: "Auditability and DOI Exam Readiness"},
	{Key: "lifecycle_governance", Title: "Lifecycle Governance"},
}

type GovernancePhilosophy struct {
	Scope                                     PhilosophyScope `json:"scope"`
	ScopeRef                                  string          `json:"scope_ref"`
	RiskAppetite                              string          `json:"risk_appetite"`
	FairnessAndUnfairDiscriminationPrinciples string          `json:"fairness_and_unfair_discrimination_principles"`
	ExternalDataAndVendorControls             string          `json:"external_data_and_vendor_controls"`
	RegulatoryAlignmentPrinciples             string          `json:"regulatory_alignment_principles"`
	SafetyAndCustomerProtectionPrinciples     string          `json:"safety_and_customer_protection_principles"`
	ExplainabilityAndCustomerCommunication    string          `json:"explainability_and_customer_communication"`
	AuditabilityAndDOIExamReadiness           string          `json:"auditability_and_DOI_exam_readiness"`
	LifecycleGovernance                       string          `json:"lifecycle_governance"`
	GeneratedByLLM                            bool            `json:"generated_by_llm"`
	SourcePromptRef                           string          `json:"source_prompt_ref,omitempty"`
	CreatedAt                                 time.Time       `json:"created_at"`
	UpdatedAt                                 time.Time       `json:"updated_at"`
}

// ID is the audit entity id of the philosophy.
func (p *GovernancePhilosophy) ID() string {
	return string(p.Scope) + "_" + p.ScopeRef
}

func (p *GovernancePhilosophy) Validate() error {
	if !p.Scope.IsValid() {
		return Invalid("scope", fmt.Sprintf("must be one of org, business_domain, line_of_business, model; got %q", p.Scope))
	}
	if strings.TrimSpace(p.ScopeRef) == "" {
		return Invalid("scope_ref", "is required")
	}
	return nil
}

// field returns a pointer to the section text for key, or nil for unknown keys.
func (p *GovernancePhilosophy) field(key string) *string {
	switch key {
	case "risk_appetite":
		return &p.RiskAppetite
	case "fairness_and_unfair_discrimination_principles":
		return &p.FairnessAndUnfairDiscriminationPrinciples
	case "external_data_and_vendor_controls":
		return &p.ExternalDataAndVendorControls
	case "regulatory_alignment_principles":
		return &p.RegulatoryAlignmentPrinciples
	case "safety_and_customer_protection_principles":
		return &p.SafetyAndCustomerProtectionPrinciples
	case "explainability_and_customer_communication":
		return &p.ExplainabilityAndCustomerCommunication
	case "auditability_and_DOI_exam_readiness":
		return &p.AuditabilityAndDOIExamReadiness
	case "lifecycle_governance":
		return &p.LifecycleGovernance
	}
	return nil
}

// Section returns the text of a section.
func (p *GovernancePhilosophy) Section(key string) string {
	if f := p.field(key); f != nil {
		return *f
	}
	return ""
}

// SetSection replaces the text of a section. Unknown keys are ignored.
func (p *GovernancePhilosophy) SetSection(key, text string) {
	if f := p.field(key); f != nil {
		*f = text
	}
}

// EmptySections returns the sections with no text, in document order.
func (p *GovernancePhilosophy) EmptySections() []PhilosophySection {
	var out []PhilosophySection
	for _, s := range PhilosophySections {
		if strings.TrimSpace(p.Section(s.Key)) == "" {
			out = append(out, s)
		}
	}
	return out
}

// ScopeKey identifies one philosophy document.
type ScopeKey struct {
	Scope    PhilosophyScope
	ScopeRef string
}

// RecordKey is the storage key of the philosophy document for k.
func (k ScopeKey) RecordKey() string {
	return string(k.Scope) + "/" + k.ScopeRef
}

// ModelRef is the model id a model-scoped document belongs to, else "".
func (p *GovernancePhilosophy) ModelRef() string {
	if p.Scope == ScopeModel {
		return p.ScopeRef
	}
	return ""
}

// Key returns the scope key of the document.
func (p *GovernancePhilosophy) Key() ScopeKey {
	return ScopeKey{Scope: p.Scope, ScopeRef: p.ScopeRef}
}

// ScopeChain returns the lookup chain for a model, most specific first.
func ScopeChain(m *AIModel) []ScopeKey {
	return []ScopeKey{
		{Scope: ScopeModel, ScopeRef: m.ID},
		{Scope: ScopeLineOfBusiness, ScopeRef: string(m.LineOfBusiness)},
		{Scope: ScopeBusinessDomain, ScopeRef: string(m.BusinessDomain)},
		{Scope: ScopeOrg, ScopeRef: OrgScopeRef},
	}
}

// ResolvedSection is one section of a resolved philosophy and where it came from.
type ResolvedSection struct {
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Text        string          `json:"text"`
	SourceScope PhilosophyScope `json:"source_scope,omitempty"`
	SourceRef   string          `json:"source_ref,omitempty"`
}

// ResolvedPhilosophy is the effective philosophy for a model.
type ResolvedPhilosophy struct {
	ModelID  string            `json:"model_id"`
	Sections []ResolvedSection `json:"sections"`
	Sources  []ScopeKey        `json:"-"`
}

// IsEmpty reports whether no section resolved to any text.
func (r *ResolvedPhilosophy) IsEmpty() bool {
	for _, s := range r.Sections {
		if s.Text != "" {
			return false
		}
	}
	return true
}

// ResolvePhilosophy picks, per section, the most specific non-empty text
// along chain. chain must be ordered most specific first; nil entries are
// scopes with no document.
func ResolvePhilosophy(modelID string, chain []*GovernancePhilosophy) *ResolvedPhilosophy {
	out := &ResolvedPhilosophy{ModelID: modelID}
	for _, p := range chain {
		if p != nil {
			out.Sources = append(out.Sources, ScopeKey{Scope: p.Scope, ScopeRef: p.ScopeRef})
		}
	}
	for _, s := range PhilosophySections {
		rs := ResolvedSection{Key: s.Key, Title: s.Title}
		for _, p := range chain {
			if p == nil {
				continue
			}
			if text := strings.TrimSpace(p.Section(s.Key)); text != "" {
				rs.Text = text
				rs.SourceScope = p.Scope
				rs.SourceRef = p.ScopeRef
				break
			}
		}
		out.Sections = append(out.Sections, rs)
	}
	return out
}
