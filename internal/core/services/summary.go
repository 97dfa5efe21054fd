package services

import (
	"context"
	"fmt"
	"sort"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

// SummaryService builds point-in-time governance summaries. It never writes.
type SummaryService struct {
	log      ports.RecordLog
	models   ports.ModelRepository
	evals    ports.EvaluationRepository
	lineage  ports.LineageRepository
	controls ports.ControlCatalogRepository
}

func NewSummaryService(
	recordLog ports.RecordLog,
	models ports.ModelRepository,
	evals ports.EvaluationRepository,
	lineage ports.LineageRepository,
	controls ports.ControlCatalogRepository,
) *SummaryService {
	return &SummaryService{
		log:      recordLog,
		models:   models,
		evals:    evals,
		lineage:  lineage,
		controls: controls,
	}
}

// Summarize reads every stream of a model as of the current head.
func (s *SummaryService) Summarize(ctx context.Context, modelID string) (*domain.GovernanceSummary, error) {
	head, err := s.log.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("read record head: %w", err)
	}
	if head == 0 {
		// an empty log has no models
		return nil, domain.ErrModelNotFound
	}
	return s.SummarizeAt(ctx, modelID, head)
}

// SummarizeAt reads every stream of a model as of sequence asOf.
func (s *SummaryService) SummarizeAt(ctx context.Context, modelID string, asOf int64) (*domain.GovernanceSummary, error) {
	model, err := requireModel(ctx, s.models, modelID, asOf)
	if err != nil {
		return nil, err
	}

	agg := newSummaryBuilder()
	for _, kind := range domain.EvaluationKinds {
		stored, err := s.evals.ListByModel(ctx, kind, modelID, asOf)
		if err != nil {
			return nil, err
		}
		for _, st := range stored {
			st.Record.Accept(agg)
		}
	}

	catalog, err := s.controls.List(ctx, asOf)
	if err != nil {
		return nil, err
	}
	lineage, err := s.lineage.ListByModel(ctx, modelID, asOf)
	if err != nil {
		return nil, err
	}

	summary := agg.build(model, catalog)
	summary.AsOfSequence = asOf
	summary.LineageSnapshots = len(lineage)
	return summary, nil
}

// ============================================================================
// Summary fold
// ============================================================================

// summaryBuilder folds records in append order. Feeding records in append
// order makes "latest" resolve equal timestamps to the later append.
type summaryBuilder struct {
	bias     *domain.BiasSummary
	drift    *domain.DriftSummary
	explain  *domain.ExplainabilitySummary
	rag      *domain.RAGSummary
	risk     *domain.RiskAssessmentSummary
	controls map[string]*domain.ControlEvaluation
	ctrlRecs int
}

func newSummaryBuilder() *summaryBuilder {
	return &summaryBuilder{controls: map[string]*domain.ControlEvaluation{}}
}

var _ domain.RecordVisitor = (*summaryBuilder)(nil)

func fold[T any](s *domain.Stream[T], r *T, replaces func(latest *T) bool) {
	s.Count++
	if s.Latest == nil || replaces(s.Latest) {
		s.Latest = r
	}
}

func (b *summaryBuilder) VisitBias(r *domain.BiasEvaluation) {
	if b.bias == nil {
		b.bias = &domain.BiasSummary{}
	}
	fold(&b.bias.Stream, r, func(l *domain.BiasEvaluation) bool { return !r.Timestamp.Before(l.Timestamp) })
	if r.RegulatoryConcernFlag {
		b.bias.RegulatoryConcerns++
	}
	if r.Status == domain.BiasUnacceptable {
		b.bias.Unacceptable++
	}
}

func (b *summaryBuilder) VisitDrift(r *domain.DriftEvaluation) {
	if b.drift == nil {
		b.drift = &domain.DriftSummary{}
	}
	fold(&b.drift.Stream, r, func(l *domain.DriftEvaluation) bool { return !r.Timestamp.Before(l.Timestamp) })
	if r.Status == domain.DriftBreached {
		b.drift.Breaches++
	}
}

func (b *summaryBuilder) VisitExplainability(r *domain.ExplainabilityEvaluation) {
	if b.explain == nil {
		b.explain = &domain.ExplainabilitySummary{}
	}
	fold(&b.explain.Stream, r, func(l *domain.ExplainabilityEvaluation) bool { return !r.Timestamp.Before(l.Timestamp) })
}

func (b *summaryBuilder) VisitControl(r *domain.ControlEvaluation) {
	b.ctrlRecs++
	cur, ok := b.controls[r.ControlID]
	if !ok || !r.LastUpdated.Before(cur.LastUpdated) {
		b.controls[r.ControlID] = r
	}
}

func (b *summaryBuilder) VisitRAG(r *domain.RAGEvaluation) {
	if b.rag == nil {
		b.rag = &domain.RAGSummary{}
	}
	fold(&b.rag.Stream, r, func(l *domain.RAGEvaluation) bool { return !r.Timestamp.Before(l.Timestamp) })
	if r.CoverageMisstatementFlag {
		b.rag.CoverageMisstatements++
	}
}

func (b *summaryBuilder) VisitRiskAssessment(r *domain.RiskAssessmentRecord) {
	if b.risk == nil {
		b.risk = &domain.RiskAssessmentSummary{}
	}
	fold(&b.risk.Stream, r, func(l *domain.RiskAssessmentRecord) bool { return !r.Timestamp.Before(l.Timestamp) })
}

func (b *summaryBuilder) empty() bool {
	return b.ctrlRecs == 0 && b.bias == nil && b.drift == nil && b.explain == nil && b.rag == nil && b.risk == nil
}

func (b *summaryBuilder) build(model *domain.AIModel, catalog []*domain.ControlCatalogEntry) *domain.GovernanceSummary {
	summary := &domain.GovernanceSummary{
		Model:           model,
		Bias:            b.bias,
		Drift:           b.drift,
		Explainability:  b.explain,
		RAG:             b.rag,
		RiskAssessments: b.risk,
	}

	if b.empty() {
		// a model with no records of any kind has no control coverage to report
		return summary
	}
	cs := &domain.ControlSummary{
		Records:              b.ctrlRecs,
		Effective:            make([]*domain.ControlEvaluation, 0, len(b.controls)),
		UnevaluatedMandatory: []string{},
	}
	for _, e := range b.controls {
		cs.Effective = append(cs.Effective, e)
	}
	sort.Slice(cs.Effective, func(i, j int) bool { return cs.Effective[i].ControlID < cs.Effective[j].ControlID })
	for _, e := range cs.Effective {
		cs.Stats.Add(e.Status)
	}
	// catalog is sorted by control id
	for _, c := range catalog {
		if !c.MandatoryForProd || !c.AppliesTo(model.UseCaseCategory) {
			continue
		}
		cs.ApplicableMandatory++
		if _, ok := b.controls[c.ControlID]; !ok {
			cs.UnevaluatedMandatory = append(cs.UnevaluatedMandatory, c.ControlID)
		}
	}
	summary.Controls = cs
	return summary
}
