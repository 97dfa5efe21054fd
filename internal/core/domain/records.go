package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ============================================================================
// Bias / Unfair Discrimination
// ============================================================================

type BiasStatus string

const (
	BiasAcceptable   BiasStatus = "acceptable"
	BiasNeedsReview  BiasStatus = "needs_review"
	BiasUnacceptable BiasStatus = "unacceptable"
)

func (s BiasStatus) IsValid() bool {
	return s == BiasAcceptable || s == BiasNeedsReview || s == BiasUnacceptable
}

type HarmRisk string

const (
	HarmLow    HarmRisk = "low"
	HarmMedium HarmRisk = "medium"
	HarmHigh   HarmRisk = "high"
)

func (h HarmRisk) IsValid() bool {
	return h == HarmLow || h == HarmMedium || h == HarmHigh
}

type BiasEvaluation struct {
	ModelID                     string     `json:"model_id"`
	TestScope                   string     `json:"test_scope"`
	ProtectedOrProhibitedFactor string     `json:"protected_or_prohibited_factor"`
	TestType                    string     `json:"test_type"`
	Metric                      string     `json:"metric"`
	Value                       float64    `json:"value"`
	Threshold                   float64    `json:"threshold"`
	Status                      BiasStatus `json:"status"`
	MitigationPlan              string     `json:"mitigation_plan,omitempty"`
	CustomerHarmRisk            HarmRisk   `json:"customer_harm_risk"`
	RegulatoryConcernFlag       bool       `json:"regulatory_concern_flag"`
	Timestamp                   time.Time  `json:"timestamp"`
}

func (r *BiasEvaluation) Kind() EvaluationKind  { return KindBias }
func (r *BiasEvaluation) ModelRef() string      { return r.ModelID }
func (r *BiasEvaluation) RecordedAt() time.Time { return r.Timestamp }
func (r *BiasEvaluation) Accept(v RecordVisitor) { v.VisitBias(r) }

func (r *BiasEvaluation) bind(modelID string, now time.Time) {
	r.ModelID = modelID
	stampTime(&r.Timestamp, now)
}

func (r *BiasEvaluation) Validate() error {
	if err := required(map[string]string{
		"test_scope":                     r.TestScope,
		"protected_or_prohibited_factor": r.ProtectedOrProhibitedFactor,
		"test_type":                      r.TestType,
		"metric":                         r.Metric,
	}); err != nil {
		return err
	}
	if err := finite("value", r.Value); err != nil {
		return err
	}
	if err := finite("threshold", r.Threshold); err != nil {
		return err
	}
	if !r.Status.IsValid() {
		return Invalid("status", fmt.Sprintf("must be one of acceptable, needs_review, unacceptable; got %q", r.Status))
	}
	if !r.CustomerHarmRisk.IsValid() {
		return Invalid("customer_harm_risk", fmt.Sprintf("must be one of low, medium, high; got %q", r.CustomerHarmRisk))
	}
	return nil
}

// ============================================================================
// Drift Monitoring
// ============================================================================

type DriftType string

const (
	DriftData       DriftType = "data"
	DriftPrediction DriftType = "prediction"
	DriftConcept    DriftType = "concept"
)

func (t DriftType) IsValid() bool {
	return t == DriftData || t == DriftPrediction || t == DriftConcept
}

type DriftStatus string

const (
	DriftWithinTolerance DriftStatus = "within_tolerance"
	DriftBreached        DriftStatus = "breached"
)

func (s DriftStatus) IsValid() bool {
	return s == DriftWithinTolerance || s == DriftBreached
}

type DriftEvaluation struct {
	ModelID                string      `json:"model_id"`
	DriftType              DriftType   `json:"drift_type"`
	Metric                 string      `json:"metric"`
	Value                  float64     `json:"value"`
	Threshold              float64     `json:"threshold"`
	Status                 DriftStatus `json:"status"`
	ObservationWindow      string      `json:"observation_window"`
	InsuranceImpactSummary string      `json:"insurance_impact_summary"`
	Notes                  string      `json:"notes"`
	Timestamp              time.Time   `json:"timestamp"`
}

func (r *DriftEvaluation) Kind() EvaluationKind  { return KindDrift }
func (r *DriftEvaluation) ModelRef() string      { return r.ModelID }
func (r *DriftEvaluation) RecordedAt() time.Time { return r.Timestamp }
func (r *DriftEvaluation) Accept(v RecordVisitor) { v.VisitDrift(r) }

func (r *DriftEvaluation) bind(modelID string, now time.Time) {
	r.ModelID = modelID
	stampTime(&r.Timestamp, now)
}

func (r *DriftEvaluation) Validate() error {
	if !r.DriftType.IsValid() {
		return Invalid("drift_type", fmt.Sprintf("must be one of data, prediction, concept; got %q", r.DriftType))
	}
	if err := required(map[string]string{
		"metric":                   r.Metric,
		"observation_window":       r.ObservationWindow,
		"insurance_impact_summary": r.InsuranceImpactSummary,
	}); err != nil {
		return err
	}
	if err := finite("value", r.Value); err != nil {
		return err
	}
	if err := finite("threshold", r.Threshold); err != nil {
		return err
	}
	if r.Threshold < 0 {
		return Invalid("threshold", "must be >= 0")
	}
	if !r.Status.IsValid() {
		return Invalid("status", fmt.Sprintf("must be one of within_tolerance, breached; got %q", r.Status))
	}
	return nil
}

// ============================================================================
// Explainability
// ============================================================================

type ExplainabilityMethod string

const (
	MethodSHAP                    ExplainabilityMethod = "shap"
	MethodLIME                    ExplainabilityMethod = "lime"
	MethodGlobalFeatureImportance ExplainabilityMethod = "global_feature_importance"
	MethodLocalExplanations       ExplainabilityMethod = "local_explanations"
	MethodPromptTrace             ExplainabilityMethod = "prompt_trace"
	MethodAgentTrace              ExplainabilityMethod = "agent_trace"
)

func (m ExplainabilityMethod) IsValid() bool {
	switch m {
	case MethodSHAP, MethodLIME, MethodGlobalFeatureImportance, MethodLocalExplanations, MethodPromptTrace, MethodAgentTrace:
		return true
	}
	return false
}

type ExplainabilityEvaluation struct {
	ModelID                          string               `json:"model_id"`
	DecisionContext                  string               `json:"decision_context"`
	Method                           ExplainabilityMethod `json:"method"`
	Summary                          string               `json:"summary"`
	KeyFindings                      []string             `json:"key_findings"`
	Limitations                      string               `json:"limitations"`
	AttachmentRefs                   []string             `json:"attachment_refs"`
	ExplainabilityScore              *float64             `json:"explainability_score"`
	SuitableForCustomerCommunication bool                 `json:"suitable_for_customer_communication"`
	Timestamp                        time.Time            `json:"timestamp"`
}

func (r *ExplainabilityEvaluation) Kind() EvaluationKind  { return KindExplainability }
func (r *ExplainabilityEvaluation) ModelRef() string      { return r.ModelID }
func (r *ExplainabilityEvaluation) RecordedAt() time.Time { return r.Timestamp }
func (r *ExplainabilityEvaluation) Accept(v RecordVisitor) { v.VisitExplainability(r) }

func (r *ExplainabilityEvaluation) bind(modelID string, now time.Time) {
	r.ModelID = modelID
	stampTime(&r.Timestamp, now)
	if r.KeyFindings == nil {
		r.KeyFindings = []string{}
	}
	if r.AttachmentRefs == nil {
		r.AttachmentRefs = []string{}
	}
}

func (r *ExplainabilityEvaluation) Validate() error {
	if err := required(map[string]string{
		"decision_context": r.DecisionContext,
		"summary":          r.Summary,
	}); err != nil {
		return err
	}
	if !r.Method.IsValid() {
		return Invalid("method", fmt.Sprintf("unknown explainability method %q", r.Method))
	}
	if r.ExplainabilityScore != nil {
		if err := inRange("explainability_score", *r.ExplainabilityScore, 0, 100); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// Control Evaluations
// ============================================================================

type ControlStatus string

const (
	ControlPassed        ControlStatus = "passed"
	ControlFailed        ControlStatus = "failed"
	ControlNotApplicable ControlStatus = "not_applicable"
	ControlNeedsReview   ControlStatus = "needs_review"
)

func (s ControlStatus) IsValid() bool {
	switch s {
	case ControlPassed, ControlFailed, ControlNotApplicable, ControlNeedsReview:
		return true
	}
	return false
}

// ControlEvaluation is one upsert of a control's status for a model. The
// latest evaluation per control id is the effective status.
type ControlEvaluation struct {
	ModelID       string        `json:"model_id"`
	ControlID     string        `json:"control_id"`
	Status        ControlStatus `json:"status"`
	Rationale     string        `json:"rationale"`
	EvidenceLinks []string      `json:"evidence_links"`
	LastUpdated   time.Time     `json:"last_updated"`
}

func (r *ControlEvaluation) Kind() EvaluationKind  { return KindControl }
func (r *ControlEvaluation) ModelRef() string      { return r.ModelID }
func (r *ControlEvaluation) RecordedAt() time.Time { return r.LastUpdated }
func (r *ControlEvaluation) Accept(v RecordVisitor) { v.VisitControl(r) }

func (r *ControlEvaluation) bind(modelID string, now time.Time) {
	r.ModelID = modelID
	stampTime(&r.LastUpdated, now)
	if r.EvidenceLinks == nil {
		r.EvidenceLinks = []string{}
	}
}

func (r *ControlEvaluation) Validate() error {
	if err := required(map[string]string{
		"control_id": r.ControlID,
		"rationale":  r.Rationale,
	}); err != nil {
		return err
	}
	if !r.Status.IsValid() {
		return Invalid("status", fmt.Sprintf("must be one of passed, failed, not_applicable, needs_review; got %q", r.Status))
	}
	return nil
}

// ============================================================================
// RAG Quality
// ============================================================================

type RAGMethod string

const (
	RAGHumanLabeling RAGMethod = "human_labeling"
	RAGLLMJudge      RAGMethod = "LLM_judge"
)

func (m RAGMethod) IsValid() bool {
	return m == RAGHumanLabeling || m == RAGLLMJudge
}

type RAGEvaluation struct {
	ModelID                  string    `json:"model_id"`
	EvalBatchID              string    `json:"eval_batch_id"`
	GroundingScore           float64   `json:"grounding_score"`
	HallucinationRate        float64   `json:"hallucination_rate"`
	ContextRelevanceScore    float64   `json:"context_relevance_score"`
	Method                   RAGMethod `json:"method"`
	Summary                  string    `json:"summary"`
	Notes                    string    `json:"notes"`
	CoverageMisstatementFlag bool      `json:"coverage_misstatement_flag"`
	Timestamp                time.Time `json:"timestamp"`
}

func (r *RAGEvaluation) Kind() EvaluationKind  { return KindRAG }
func (r *RAGEvaluation) ModelRef() string      { return r.ModelID }
func (r *RAGEvaluation) RecordedAt() time.Time { return r.Timestamp }
func (r *RAGEvaluation) Accept(v RecordVisitor) { v.VisitRAG(r) }

func (r *RAGEvaluation) bind(modelID string, now time.Time) {
	r.ModelID = modelID
	stampTime(&r.Timestamp, now)
}

func (r *RAGEvaluation) Validate() error {
	if err := required(map[string]string{
		"eval_batch_id": r.EvalBatchID,
		"summary":       r.Summary,
	}); err != nil {
		return err
	}
	if err := inRange("grounding_score", r.GroundingScore, 0, 1); err != nil {
		return err
	}
	if err := inRange("hallucination_rate", r.HallucinationRate, 0, 1); err != nil {
		return err
	}
	if err := inRange("context_relevance_score", r.ContextRelevanceScore, 0, 1); err != nil {
		return err
	}
	if !r.Method.IsValid() {
		return Invalid("method", fmt.Sprintf("must be one of human_labeling, LLM_judge; got %q", r.Method))
	}
	return nil
}

// ============================================================================
// Risk Assessments
// ============================================================================

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// RiskAssessmentRecord is a persisted risk assessment, either entered by a
// reviewer or appended from a computed score.
type RiskAssessmentRecord struct {
	ModelID               string    `json:"model_id"`
	RiskScore             float64   `json:"risk_score"`
	RiskLevel             RiskLevel `json:"risk_level"`
	PrimaryRiskDrivers    []string  `json:"primary_risk_drivers"`
	BusinessImpactSummary string    `json:"business_impact_summary"`
	MitigationPlan        string    `json:"mitigation_plan"`
	ResidualRiskAccepted  bool      `json:"residual_risk_accepted"`
	ResidualRiskApprover  string    `json:"residual_risk_approver,omitempty"`
	Timestamp             time.Time `json:"timestamp"`
}

func (r *RiskAssessmentRecord) Kind() EvaluationKind  { return KindRiskAssessment }
func (r *RiskAssessmentRecord) ModelRef() string      { return r.ModelID }
func (r *RiskAssessmentRecord) RecordedAt() time.Time { return r.Timestamp }
func (r *RiskAssessmentRecord) Accept(v RecordVisitor) { v.VisitRiskAssessment(r) }

func (r *RiskAssessmentRecord) bind(modelID string, now time.Time) {
	r.ModelID = modelID
	stampTime(&r.Timestamp, now)
	if r.PrimaryRiskDrivers == nil {
		r.PrimaryRiskDrivers = []string{}
	}
}

func (r *RiskAssessmentRecord) Validate() error {
	if err := inRange("risk_score", r.RiskScore, 0, 100); err != nil {
		return err
	}
	if !r.RiskLevel.IsValid() {
		return Invalid("risk_level", fmt.Sprintf("must be one of low, medium, high, critical; got %q", r.RiskLevel))
	}
	if strings.TrimSpace(r.BusinessImpactSummary) == "" {
		return Invalid("business_impact_summary", "is required")
	}
	if r.ResidualRiskAccepted && strings.TrimSpace(r.ResidualRiskApprover) == "" {
		return Invalid("residual_risk_approver", "is required when residual risk is accepted")
	}
	return nil
}

// ============================================================================
// Validation helpers
// ============================================================================

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	// report the lexically first missing field so errors are stable
	first := missing[0]
	for _, m := range missing[1:] {
		if m < first {
			first = m
		}
	}
	return Invalid(first, "is required")
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, "must be a finite number")
	}
	return nil
}

func inRange(field string, v, lo, hi float64) error {
	if err := finite(field, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return Invalid(field, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
	return nil
}
