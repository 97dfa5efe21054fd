package domain

// ============================================================================
// Governance Summary
// ============================================================================

// Stream is the count and latest record of one evaluation stream. Latest is
// the record with the greatest timestamp; ties go to the later append.
type Stream[T any] struct {
	Count  int `json:"count"`
	Latest *T  `json:"latest"`
}

type BiasSummary struct {
	Stream[BiasEvaluation]
	RegulatoryConcerns int `json:"regulatory_concerns"`
	Unacceptable       int `json:"unacceptable"`
}

type DriftSummary struct {
	Stream[DriftEvaluation]
	Breaches int `json:"breaches"`
}

type ExplainabilitySummary struct {
	Stream[ExplainabilityEvaluation]
}

type RAGSummary struct {
	Stream[RAGEvaluation]
	CoverageMisstatements int `json:"coverage_misstatements"`
}

type RiskAssessmentSummary struct {
	Stream[RiskAssessmentRecord]
}

// ControlStats counts effective control statuses, one per evaluated control.
type ControlStats struct {
	Total         int `json:"total"`
	Passed        int `json:"passed"`
	Failed        int `json:"failed"`
	NeedsReview   int `json:"needs_review"`
	NotApplicable int `json:"not_applicable"`
}

// Add counts one effective status.
func (s *ControlStats) Add(status ControlStatus) {
	s.Total++
	switch status {
	case ControlPassed:
		s.Passed++
	case ControlFailed:
		s.Failed++
	case ControlNeedsReview:
		s.NeedsReview++
	case ControlNotApplicable:
		s.NotApplicable++
	}
}

// Evaluated is the number of effective statuses other than not_applicable.
func (s ControlStats) Evaluated() int {
	return s.Total - s.NotApplicable
}

// ControlSummary groups a model's control evaluations. Effective holds the
// latest evaluation per control id, sorted by control id.
type ControlSummary struct {
	Records   int                  `json:"records"`
	Effective []*ControlEvaluation `json:"effective"`
	Stats     ControlStats         `json:"stats"`
	// Mandatory-for-prod catalog controls applicable to the model's use case.
	ApplicableMandatory  int      `json:"applicable_mandatory"`
	UnevaluatedMandatory []string `json:"unevaluated_mandatory"`
}

// GovernanceSummary is a derived, point-in-time view of a model's evaluation
// streams. A nil sub-summary means the stream has no records.
type GovernanceSummary struct {
	Model            *AIModel               `json:"model"`
	AsOfSequence     int64                  `json:"as_of_sequence"`
	Bias             *BiasSummary           `json:"bias"`
	Drift            *DriftSummary          `json:"drift"`
	Explainability   *ExplainabilitySummary `json:"explainability"`
	Controls         *ControlSummary        `json:"controls"`
	RAG              *RAGSummary            `json:"rag"`
	RiskAssessments  *RiskAssessmentSummary `json:"risk_assessments"`
	LineageSnapshots int                    `json:"lineage_snapshots"`
}
