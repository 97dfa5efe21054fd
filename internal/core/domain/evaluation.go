package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Evaluation Kinds
// ============================================================================

type EvaluationKind string

const (
	KindBias           EvaluationKind = "bias"
	KindDrift          EvaluationKind = "drift"
	KindExplainability EvaluationKind = "explainability"
	KindControl        EvaluationKind = "control_evaluation"
	KindRAG            EvaluationKind = "rag_evaluation"
	KindRiskAssessment EvaluationKind = "risk_assessment"
)

// EvaluationKinds lists every kind in rendering order.
var EvaluationKinds = []EvaluationKind{
	KindBias, KindDrift, KindExplainability, KindControl, KindRAG, KindRiskAssessment,
}

func (k EvaluationKind) IsValid() bool {
	switch k {
	case KindBias, KindDrift, KindExplainability, KindControl, KindRAG, KindRiskAssessment:
		return true
	}
	return false
}

// Collection is the name of the append-only collection holding this kind.
func (k EvaluationKind) Collection() string {
	switch k {
	case KindControl:
		return "control_evaluations"
	case KindRAG:
		return "rag_evaluations"
	case KindRiskAssessment:
		return "risk_assessments"
	default:
		return string(k)
	}
}

// AuditAction is the action tag recorded when a record of this kind is appended.
func (k EvaluationKind) AuditAction() string {
	switch k {
	case KindBias:
		return ActionAddBiasTest
	case KindDrift:
		return ActionAddDrift
	case KindExplainability:
		return ActionAddExplainability
	case KindControl:
		return ActionUpdateControlEvaluation
	case KindRAG:
		return ActionAddRAGEvaluation
	case KindRiskAssessment:
		return ActionAddRiskAssessment
	}
	return "add_" + string(k)
}

// ============================================================================
// Evaluation Records
// ============================================================================

// EvaluationRecord is the closed set of evaluation record variants. The
// unexported bind method keeps implementations inside this package.
type EvaluationRecord interface {
	Kind() EvaluationKind
	ModelRef() string
	RecordedAt() time.Time
	Validate() error
	Accept(v RecordVisitor)
	bind(modelID string, now time.Time)
}

// RecordVisitor handles every evaluation variant. Adding a variant adds a
// method here, so every visitor fails to compile until it handles it.
type RecordVisitor interface {
	VisitBias(r *BiasEvaluation)
	VisitDrift(r *DriftEvaluation)
	VisitExplainability(r *ExplainabilityEvaluation)
	VisitControl(r *ControlEvaluation)
	VisitRAG(r *RAGEvaluation)
	VisitRiskAssessment(r *RiskAssessmentRecord)
}

// StoredEvaluation pairs a record with its position in the global append order.
type StoredEvaluation struct {
	Seq    int64
	Record EvaluationRecord
}

// LatestEvaluation picks the record with the greatest timestamp from records
// in append order. Equal timestamps resolve to the later append.
func LatestEvaluation(records []StoredEvaluation) *StoredEvaluation {
	var best *StoredEvaluation
	for i := range records {
		cur := &records[i]
		if best == nil || !cur.Record.RecordedAt().Before(best.Record.RecordedAt()) {
			best = cur
		}
	}
	return best
}

// Bind attaches the owning model id and, when the caller left it empty, the
// record timestamp. Timestamps are normalized to UTC.
func Bind(r EvaluationRecord, modelID string, now time.Time) {
	r.bind(modelID, now.UTC())
}

// NewEvaluation returns an empty record of the given kind, ready for decoding.
func NewEvaluation(kind EvaluationKind) (EvaluationRecord, error) {
	switch kind {
	case KindBias:
		return &BiasEvaluation{}, nil
	case KindDrift:
		return &DriftEvaluation{}, nil
	case KindExplainability:
		return &ExplainabilityEvaluation{}, nil
	case KindControl:
		return &ControlEvaluation{}, nil
	case KindRAG:
		return &RAGEvaluation{}, nil
	case KindRiskAssessment:
		return &RiskAssessmentRecord{}, nil
	}
	return nil, Invalid("kind", fmt.Sprintf("unknown evaluation kind %q", kind))
}

// DecodeEvaluation decodes a stored JSON payload into its typed record.
func DecodeEvaluation(kind EvaluationKind, data []byte) (EvaluationRecord, error) {
	rec, err := NewEvaluation(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", kind, err)
	}
	return rec, nil
}

func stampTime(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
		return
	}
	*t = t.UTC()
}
