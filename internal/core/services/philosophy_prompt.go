package services

import (
	"fmt"
	"strings"

	"model-governance-service/internal/core/domain"
)

const philosophySystemPrompt = "You are an insurance AI governance expert with deep knowledge of NAIC AI Principles, " +
	"state Department of Insurance regulations, and insurance industry best practices."

// sectionFocus lists what each generated section must cover.
var sectionFocus = map[string][]string{
	"risk_appetite": {
		"Acceptable risk levels for AI in insurance decisions",
		"Risk tolerance for different lines of business and use cases",
		"Escalation thresholds for high-risk AI models",
	},
	"fairness_and_unfair_discrimination_principles": {
		"Prohibited factors (race, gender, religion, etc.)",
		"Proxy discrimination (ZIP code, occupation, education as proxies)",
		"Disparate impact testing requirements",
		"State-specific regulations on protected classes",
		"Credit-based insurance scores and telematics data",
	},
	"external_data_and_vendor_controls": {
		"Vendor due diligence requirements",
		"External data validation and quality controls",
		"Third-party model risk management",
		"Data licensing and usage rights",
	},
	"regulatory_alignment_principles": {
		"NAIC AI Principles compliance",
		"State DOI filing requirements",
		"Market conduct examination preparedness",
		"Adverse action notice requirements",
	},
	"safety_and_customer_protection_principles": {
		"Customer harm prevention",
		"Adverse action procedures",
		"Appeals and recourse mechanisms",
		"Consumer data privacy",
	},
	"explainability_and_customer_communication": {
		"Explanation requirements for AI-driven decisions",
		"Customer-facing communication standards",
		"Plain language explanation guidelines",
		"Regulatory transparency requirements",
	},
	"auditability_and_DOI_exam_readiness": {
		"Model documentation requirements",
		"Record retention policies",
		"Evidence pack preparation",
		"Internal audit procedures",
	},
	"lifecycle_governance": {
		"Model development governance",
		"Validation and approval processes",
		"Ongoing monitoring requirements",
		"Model retirement procedures",
	},
}

func philosophyPrompt(p *domain.GovernancePhilosophy, section domain.PhilosophySection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the %q section of an AI governance philosophy for an insurance carrier.\n\n", section.Title)
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Scope: %s (%s)\n", p.Scope, p.ScopeRef)
	b.WriteString("- Industry: Property & Casualty / Commercial Insurance\n\n")
	b.WriteString("Requirements:\n")
	b.WriteString("- Give practical guidance that applies to insurance operations\n")
	b.WriteString("- Reference the NAIC AI Principles and state DOI requirements\n")
	b.WriteString("- Address unfair discrimination\n")
	b.WriteString("- Consider market conduct examinations\n")
	b.WriteString("- Use insurance examples: pricing, underwriting, claims, fraud detection\n")
	if focus := sectionFocus[section.Key]; len(focus) > 0 {
		fmt.Fprintf(&b, "\nCover in particular:\n")
		for _, f := range focus {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	b.WriteString("\nAnswer in 3 to 5 paragraphs.")
	return b.String()
}
