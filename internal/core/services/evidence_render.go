package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"model-governance-service/internal/core/domain"
)

// packSnapshot is everything a pack renders, read at one sequence cutoff.
// Documents carry no timestamps or sequence numbers of their own, so packs
// of unchanged records render byte-identical documents.
type packSnapshot struct {
	model       *domain.AIModel
	summary     *domain.GovernanceSummary
	risk        *domain.RiskScore
	lineage     []domain.StoredLineage
	catalog     []*domain.ControlCatalogEntry
	evaluations map[domain.EvaluationKind][]domain.StoredEvaluation
	philosophy  *domain.ResolvedPhilosophy
	audit       []*domain.AuditLogEntry
}

// renderSection renders one pack document. ok is false when the section has
// nothing to show; the model section always renders.
func renderSection(section domain.PackSection, snap *packSnapshot) (doc []byte, ok bool, err error) {
	var w mdWriter
	switch section {
	case domain.SectionModel:
		err = renderModel(&w, snap)
		ok = true
	case domain.SectionLineage:
		if ok = len(snap.lineage) > 0; ok {
			err = renderLineage(&w, snap)
		}
	case domain.SectionControls:
		if ok = snap.summary.Controls != nil; ok {
			renderControls(&w, snap)
		}
	case domain.SectionExplainability:
		if ok = len(snap.evaluations[domain.KindExplainability]) > 0; ok {
			renderExplainability(&w, snap)
		}
	case domain.SectionBias:
		if ok = len(snap.evaluations[domain.KindBias]) > 0; ok {
			renderBias(&w, snap)
		}
	case domain.SectionDrift:
		if ok = len(snap.evaluations[domain.KindDrift]) > 0; ok {
			renderDrift(&w, snap)
		}
	case domain.SectionRAG:
		if ok = len(snap.evaluations[domain.KindRAG]) > 0; ok {
			renderRAG(&w, snap)
		}
	case domain.SectionRisk:
		renderRisk(&w, snap)
		ok = true
	case domain.SectionPhilosophy:
		if ok = snap.philosophy != nil && !snap.philosophy.IsEmpty(); ok {
			renderPhilosophy(&w, snap)
		}
	case domain.SectionAuditSummary:
		if ok = len(snap.audit) > 0; ok {
			renderAuditSummary(&w, snap)
		}
	default:
		return nil, false, fmt.Errorf("unknown pack section %q", section)
	}
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(w.String()), true, nil
}

// ============================================================================
// Sections
// ============================================================================

func renderModel(w *mdWriter, snap *packSnapshot) error {
	m := snap.model
	w.heading(1, "AI Model Details")

	w.heading(2, "Basic Information")
	w.field("Model ID", m.ID)
	w.field("Name", m.Name)
	w.field("Version", m.Version)
	w.field("Model Type", string(m.ModelType))
	w.blank()

	w.heading(2, "Insurance Context")
	w.field("Business Domain", string(m.BusinessDomain))
	w.field("Line of Business", string(m.LineOfBusiness))
	w.field("Use Case Category", string(m.UseCaseCategory))
	w.field("Detailed Use Case", m.DetailedUseCase)
	w.blank()

	w.heading(2, "Ownership & Program")
	w.field("Owner Team", m.OwnerTeam)
	w.field("Product/Program", m.ProductOrProgram)
	w.blank()

	w.heading(2, "Deployment")
	w.field("Environment", string(m.DeploymentEnvironment))
	w.field("Jurisdictions", joinOr(m.Jurisdictions, "None"))
	w.field("Governance Status", string(m.GovernanceStatus))
	w.blank()

	w.heading(2, "External Data Sources")
	w.list(m.ExternalDataSources)

	w.heading(2, "Deployment Details")
	return w.jsonBlock(m.DeploymentDetails)
}

func renderLineage(w *mdWriter, snap *packSnapshot) error {
	entries := make([]domain.StoredLineage, len(snap.lineage))
	copy(entries, snap.lineage)
	sort.SliceStable(entries, func(i, j int) bool {
		return chronological(entries[i].Entry.Timestamp, entries[i].Seq, entries[j].Entry.Timestamp, entries[j].Seq)
	})

	w.heading(1, "Model Lineage")
	w.line("Total snapshots: %d", len(entries))
	w.blank()
	for i, st := range entries {
		e := st.Entry
		w.heading(2, fmt.Sprintf("Snapshot %d: %s", i+1, formatTime(e.Timestamp)))
		w.field("Event Type", e.EventType)
		w.field("Training Pipeline", orNA(e.TrainingPipeline))
		w.blank()
		w.line("**Data Sources:**")
		w.list(e.DataSources)
		w.line("**External Data Sources:**")
		w.list(e.ExternalDataSources)
		w.line("**Feature Store References:**")
		w.list(e.FeatureStoreRefs)
		w.line("**Artifacts:**")
		if err := w.jsonBlock(e.Artifacts); err != nil {
			return err
		}
		w.line("**Deployment:**")
		if err := w.jsonBlock(e.Deployment); err != nil {
			return err
		}
		w.rule()
	}
	return nil
}

func renderControls(w *mdWriter, snap *packSnapshot) {
	cs := snap.summary.Controls
	effective := make(map[string]*domain.ControlEvaluation, len(cs.Effective))
	for _, e := range cs.Effective {
		effective[e.ControlID] = e
	}

	w.heading(1, "Governance Controls & Evaluations")
	w.heading(2, "Control Evaluation Summary")
	w.bullet("Catalog Controls: %d", len(snap.catalog))
	w.bullet("Evaluated: %d", cs.Stats.Total)
	w.bullet("Passed: %d", cs.Stats.Passed)
	w.bullet("Failed: %d", cs.Stats.Failed)
	w.bullet("Needs Review: %d", cs.Stats.NeedsReview)
	w.bullet("Not Applicable: %d", cs.Stats.NotApplicable)
	w.bullet("Mandatory for Prod (applicable): %d", cs.ApplicableMandatory)
	w.bullet("Mandatory Not Yet Evaluated: %s", joinOr(cs.UnevaluatedMandatory, "None"))
	w.blank()

	w.heading(2, "Detailed Evaluations")
	seen := make(map[string]bool, len(snap.catalog))
	for _, c := range snap.catalog {
		seen[c.ControlID] = true
		w.heading(3, fmt.Sprintf("%s: %s", c.ControlID, c.RegulatoryFocus))
		w.field("Framework", c.FrameworkReference)
		w.field("Category", string(c.Category))
		w.field("Accountability", c.Accountability)
		w.field("Mandatory for Prod", strconv.FormatBool(c.MandatoryForProd))
		w.blank()
		w.field("Description", c.Description)
		w.blank()
		writeControlEvaluation(w, effective[c.ControlID])
		w.rule()
	}
	// evaluations of controls since removed from the catalog
	for _, e := range cs.Effective {
		if seen[e.ControlID] {
			continue
		}
		w.heading(3, fmt.Sprintf("%s: (no longer in catalog)", e.ControlID))
		writeControlEvaluation(w, e)
		w.rule()
	}
}

func writeControlEvaluation(w *mdWriter, e *domain.ControlEvaluation) {
	if e == nil {
		w.field("Evaluation Status", "NOT EVALUATED")
		w.blank()
		return
	}
	w.field("Evaluation Status", string(e.Status))
	w.field("Rationale", e.Rationale)
	w.field("Last Updated", formatTime(e.LastUpdated))
	if len(e.EvidenceLinks) > 0 {
		w.blank()
		w.line("**Evidence Links:**")
		w.list(e.EvidenceLinks)
		return
	}
	w.blank()
}

func renderExplainability(w *mdWriter, snap *packSnapshot) {
	recs := sortedRecords(snap.evaluations[domain.KindExplainability])
	w.heading(1, "Explainability Evaluations")
	w.line("Total evaluations: %d", len(recs))
	w.blank()
	for i, st := range recs {
		r := st.Record.(*domain.ExplainabilityEvaluation)
		score := "N/A"
		if r.ExplainabilityScore != nil {
			score = formatNumber(*r.ExplainabilityScore)
		}
		w.heading(2, fmt.Sprintf("Evaluation %d: %s", i+1, r.DecisionContext))
		w.field("Method", string(r.Method))
		w.field("Timestamp", formatTime(r.Timestamp))
		w.field("Explainability Score", score)
		w.field("Suitable for Customer Communication", strconv.FormatBool(r.SuitableForCustomerCommunication))
		w.blank()
		w.field("Summary", r.Summary)
		w.blank()
		w.line("**Key Findings:**")
		w.list(r.KeyFindings)
		w.field("Limitations", orNA(r.Limitations))
		if len(r.AttachmentRefs) > 0 {
			w.blank()
			w.line("**Attachments:**")
			w.list(r.AttachmentRefs)
		}
		w.rule()
	}
}

func renderBias(w *mdWriter, snap *packSnapshot) {
	recs := sortedRecords(snap.evaluations[domain.KindBias])
	w.heading(1, "Bias & Unfair Discrimination Testing")
	w.line("Total tests: %d", len(recs))
	if b := snap.summary.Bias; b != nil {
		w.line("Unacceptable results: %d, regulatory concerns flagged: %d", b.Unacceptable, b.RegulatoryConcerns)
	}
	w.blank()
	for i, st := range recs {
		r := st.Record.(*domain.BiasEvaluation)
		w.heading(2, fmt.Sprintf("Test %d: %s", i+1, r.TestScope))
		w.field("Protected/Prohibited Factor", r.ProtectedOrProhibitedFactor)
		w.field("Test Type", r.TestType)
		w.field("Metric", r.Metric)
		w.field("Value", formatNumber(r.Value))
		w.field("Threshold", formatNumber(r.Threshold))
		w.field("Status", string(r.Status))
		w.field("Customer Harm Risk", string(r.CustomerHarmRisk))
		w.field("Regulatory Concern Flag", strconv.FormatBool(r.RegulatoryConcernFlag))
		w.field("Timestamp", formatTime(r.Timestamp))
		w.blank()
		w.field("Mitigation Plan", orNone(r.MitigationPlan))
		w.rule()
	}
}

func renderDrift(w *mdWriter, snap *packSnapshot) {
	recs := sortedRecords(snap.evaluations[domain.KindDrift])
	w.heading(1, "Drift Monitoring")
	w.line("Total drift evaluations: %d", len(recs))
	if d := snap.summary.Drift; d != nil {
		w.line("Threshold breaches: %d", d.Breaches)
	}
	w.blank()
	for i, st := range recs {
		r := st.Record.(*domain.DriftEvaluation)
		w.heading(2, fmt.Sprintf("Evaluation %d: %s Drift", i+1, r.DriftType))
		w.field("Metric", r.Metric)
		w.field("Value", formatNumber(r.Value))
		w.field("Threshold", formatNumber(r.Threshold))
		w.field("Status", string(r.Status))
		w.field("Observation Window", r.ObservationWindow)
		w.field("Timestamp", formatTime(r.Timestamp))
		w.blank()
		w.field("Insurance Impact", r.InsuranceImpactSummary)
		w.blank()
		w.field("Notes", orNone(r.Notes))
		w.rule()
	}
}

func renderRAG(w *mdWriter, snap *packSnapshot) {
	recs := sortedRecords(snap.evaluations[domain.KindRAG])
	w.heading(1, "RAG Evaluations (Insurance Copilots)")
	w.line("Total evaluations: %d", len(recs))
	w.blank()
	for i, st := range recs {
		r := st.Record.(*domain.RAGEvaluation)
		w.heading(2, fmt.Sprintf("Evaluation %d: Batch %s", i+1, r.EvalBatchID))
		w.field("Grounding Score", formatNumber(r.GroundingScore))
		w.field("Hallucination Rate", formatNumber(r.HallucinationRate))
		w.field("Context Relevance Score", formatNumber(r.ContextRelevanceScore))
		w.field("Method", string(r.Method))
		w.field("Coverage Misstatement Flag", strconv.FormatBool(r.CoverageMisstatementFlag))
		w.field("Timestamp", formatTime(r.Timestamp))
		w.blank()
		w.field("Summary", r.Summary)
		w.blank()
		w.field("Notes", orNone(r.Notes))
		w.rule()
	}
}

func renderRisk(w *mdWriter, snap *packSnapshot) {
	score := snap.risk
	w.heading(1, "Risk Assessments")

	w.heading(2, "Computed Risk Score")
	w.field("Risk Score", formatNumber(score.Score)+"/100")
	w.field("Risk Level", string(score.Level))
	w.blank()
	w.line("| Component | Sub-score | Weight | Contribution |")
	w.line("|---|---|---|---|")
	for _, c := range score.Components {
		w.line("| %s | %s | %s | %s |", c.Name, formatNumber(c.Score), formatNumber(c.Weight), formatNumber(c.Contribution))
	}
	w.blank()
	w.line("**Primary Risk Drivers:**")
	if len(score.Drivers) == 0 {
		w.line("- No significant risks identified")
		w.blank()
	} else {
		w.list(score.Drivers)
	}
	w.field("Business Impact Summary", score.BusinessImpact)
	w.blank()

	recs := sortedRecords(snap.evaluations[domain.KindRiskAssessment])
	w.heading(2, "Recorded Assessments")
	w.line("Total assessments: %d", len(recs))
	w.blank()
	for i, st := range recs {
		r := st.Record.(*domain.RiskAssessmentRecord)
		w.heading(3, fmt.Sprintf("Assessment %d", i+1))
		w.field("Risk Score", formatNumber(r.RiskScore)+"/100")
		w.field("Risk Level", string(r.RiskLevel))
		w.field("Timestamp", formatTime(r.Timestamp))
		w.blank()
		w.line("**Primary Risk Drivers:**")
		w.list(r.PrimaryRiskDrivers)
		w.field("Business Impact Summary", r.BusinessImpactSummary)
		w.blank()
		w.field("Mitigation Plan", orNone(r.MitigationPlan))
		w.blank()
		w.field("Residual Risk Accepted", strconv.FormatBool(r.ResidualRiskAccepted))
		w.field("Residual Risk Approver", orNA(r.ResidualRiskApprover))
		w.rule()
	}
}

func renderPhilosophy(w *mdWriter, snap *packSnapshot) {
	p := snap.philosophy
	w.heading(1, "Governance Philosophy")
	sources := make([]string, 0, len(p.Sources))
	for _, s := range p.Sources {
		sources = append(sources, fmt.Sprintf("%s: %s", s.Scope, s.ScopeRef))
	}
	w.line("Applicable philosophies: %s", joinOr(sources, "None"))
	w.blank()
	for _, s := range p.Sections {
		w.heading(2, s.Title)
		if s.Text == "" {
			w.line("Not specified")
			w.blank()
			continue
		}
		w.line("%s", s.Text)
		w.blank()
		w.line("*Source: %s (%s)*", s.SourceScope, s.SourceRef)
		w.blank()
	}
}

func renderAuditSummary(w *mdWriter, snap *packSnapshot) {
	w.heading(1, "Audit Log Summary")
	w.line("Audit events for this model: %d", len(snap.audit))
	w.blank()
	for _, e := range snap.audit {
		w.line("- **%s** #%d %s by %s on %s (%s)",
			formatTime(e.Timestamp), e.Index, e.ActionType, e.UserID, e.EntityType, e.EntityID)
	}
	w.blank()
}

// ============================================================================
// Markdown helpers
// ============================================================================

type mdWriter struct {
	strings.Builder
}

func (w *mdWriter) line(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

func (w *mdWriter) blank() { w.WriteByte('\n') }

func (w *mdWriter) heading(level int, title string) {
	w.line("%s %s", strings.Repeat("#", level), title)
	w.blank()
}

func (w *mdWriter) field(name, value string) {
	w.line("- **%s**: %s", name, value)
}

func (w *mdWriter) bullet(format string, args ...any) {
	w.line("- "+format, args...)
}

func (w *mdWriter) list(items []string) {
	if len(items) == 0 {
		w.line("- None")
	}
	for _, it := range items {
		w.line("- %s", it)
	}
	w.blank()
}

func (w *mdWriter) rule() {
	w.line("---")
	w.blank()
}

// jsonBlock writes v as indented JSON. Map keys marshal sorted.
func (w *mdWriter) jsonBlock(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("render json block: %w", err)
	}
	w.line("```json")
	w.line("%s", data)
	w.line("```")
	w.blank()
	return nil
}

func sortedRecords(recs []domain.StoredEvaluation) []domain.StoredEvaluation {
	out := make([]domain.StoredEvaluation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return chronological(out[i].Record.RecordedAt(), out[i].Seq, out[j].Record.RecordedAt(), out[j].Seq)
	})
	return out
}

func chronological(ti time.Time, si int64, tj time.Time, sj int64) bool {
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return si < sj
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
