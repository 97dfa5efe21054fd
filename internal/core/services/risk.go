package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"model-governance-service/internal/core/domain"
	"model-governance-service/internal/telemetry"
)

// ============================================================================
// Risk Scorer
// ============================================================================

// Scoring floors and penalties. Sub-scores are in [0,100], higher is riskier.
const (
	biasAcceptableBase  = 5.0
	biasNeedsReview     = 50.0
	biasUnacceptable    = 100.0
	biasRegulatoryFloor = 85.0
	biasHarmMedium      = 10.0
	biasHarmHigh        = 20.0

	controlsUnevaluatedPenalty = 40.0

	explainabilityUnscored       = 50.0
	explainabilityMissingProd    = 80.0
	explainabilityMissingNonProd = 40.0

	driftBreachBase    = 70.0
	driftOverThreshold = 50.0
	driftWithinCeiling = 10.0

	// floor for the composite when the latest bias record is unacceptable
	// or carries a regulatory concern
	seriousBiasFloor = 60.0

	materialScore    = 50.0
	materialControls = 40.0
)

// componentOrder breaks ties between equal contributions.
var componentOrder = map[domain.RiskComponentName]int{
	domain.ComponentBias:           0,
	domain.ComponentControls:       1,
	domain.ComponentExplainability: 2,
	domain.ComponentDrift:          3,
	domain.ComponentOperational:    4,
}

// RiskScorer computes a composite risk score from a governance summary. It
// is a pure function of its input.
type RiskScorer struct{}

func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

func (RiskScorer) Score(summary *domain.GovernanceSummary) *domain.RiskScore {
	m := summary.Model

	components := []domain.RiskComponent{
		scoreBias(summary.Bias),
		scoreControls(summary.Controls, m.IsProduction()),
		scoreExplainability(summary.Explainability, m.IsProduction()),
		scoreDrift(summary.Drift),
		scoreOperational(m),
	}

	total := 0.0
	for i := range components {
		c := &components[i]
		c.Score = round2(clamp(c.Score))
		c.Contribution = round2(c.Score * c.Weight)
		total += c.Score * c.Weight
	}
	if seriousBias(summary.Bias) {
		total = math.Max(total, seriousBiasFloor)
	}
	total = round2(clamp(total))
	level := domain.LevelFor(total)

	return &domain.RiskScore{
		ModelID:        m.ID,
		Score:          total,
		Level:          level,
		Drivers:        drivers(components),
		Components:     components,
		BusinessImpact: businessImpact(m, level),
		AsOfSequence:   summary.AsOfSequence,
	}
}

func scoreBias(s *domain.BiasSummary) domain.RiskComponent {
	c := domain.RiskComponent{Name: domain.ComponentBias, Weight: domain.WeightBias}
	if s == nil || s.Latest == nil {
		c.Detail = "no bias testing on record"
		return c
	}
	r := s.Latest
	switch r.Status {
	case domain.BiasUnacceptable:
		c.Score = biasUnacceptable
	case domain.BiasNeedsReview:
		c.Score = biasNeedsReview
	default:
		c.Score = biasAcceptableBase
	}
	switch r.CustomerHarmRisk {
	case domain.HarmHigh:
		c.Score += biasHarmHigh
	case domain.HarmMedium:
		c.Score += biasHarmMedium
	}
	if r.RegulatoryConcernFlag {
		c.Score = math.Max(c.Score, biasRegulatoryFloor)
	}
	c.Material = c.Score >= materialScore

	c.Detail = fmt.Sprintf("Unfair discrimination risk: latest %s test on %s is %s (%s %s vs threshold %s)",
		r.TestType, r.ProtectedOrProhibitedFactor, r.Status, r.Metric, formatNumber(r.Value), formatNumber(r.Threshold))
	if r.RegulatoryConcernFlag {
		c.Detail += ", regulatory concern flagged"
	}
	return c
}

func seriousBias(s *domain.BiasSummary) bool {
	if s == nil || s.Latest == nil {
		return false
	}
	return s.Latest.Status == domain.BiasUnacceptable || s.Latest.RegulatoryConcernFlag
}

func scoreControls(s *domain.ControlSummary, prod bool) domain.RiskComponent {
	c := domain.RiskComponent{Name: domain.ComponentControls, Weight: domain.WeightControls}
	if s == nil {
		c.Detail = "no control evaluations on record"
		return c
	}
	if evaluated := s.Stats.Evaluated(); evaluated > 0 {
		c.Score = (float64(s.Stats.Failed) + 0.5*float64(s.Stats.NeedsReview)) / float64(evaluated) * 100
	}
	unevaluated := len(s.UnevaluatedMandatory)
	if prod && s.ApplicableMandatory > 0 {
		c.Score += controlsUnevaluatedPenalty * float64(unevaluated) / float64(s.ApplicableMandatory)
	}
	c.Material = s.Stats.Failed > 0 || c.Score >= materialControls

	if s.Stats.Evaluated() == 0 {
		c.Detail = "no control evaluations on record"
	} else {
		c.Detail = fmt.Sprintf("Control failures: %d of %d evaluated controls failed, %d need review",
			s.Stats.Failed, s.Stats.Evaluated(), s.Stats.NeedsReview)
	}
	if prod && unevaluated > 0 {
		c.Detail += fmt.Sprintf("; %d mandatory production controls not yet evaluated", unevaluated)
	}
	return c
}

func scoreExplainability(s *domain.ExplainabilitySummary, prod bool) domain.RiskComponent {
	c := domain.RiskComponent{Name: domain.ComponentExplainability, Weight: domain.WeightExplainability}
	if s == nil || s.Latest == nil {
		if prod {
			c.Score = explainabilityMissingProd
			c.Material = true
			c.Detail = "Explainability gap: no explainability evaluation for a production model"
		} else {
			c.Score = explainabilityMissingNonProd
			c.Detail = "no explainability evaluation on record"
		}
		return c
	}
	r := s.Latest
	if r.ExplainabilityScore == nil {
		c.Score = explainabilityUnscored
		c.Detail = fmt.Sprintf("Explainability gap: latest %s review for %s has no score", r.Method, r.DecisionContext)
	} else {
		c.Score = 100 - *r.ExplainabilityScore
		c.Detail = fmt.Sprintf("Explainability gap: latest %s review for %s scored %s",
			r.Method, r.DecisionContext, formatNumber(*r.ExplainabilityScore))
	}
	c.Material = c.Score >= materialScore
	return c
}

func scoreDrift(s *domain.DriftSummary) domain.RiskComponent {
	c := domain.RiskComponent{Name: domain.ComponentDrift, Weight: domain.WeightDrift}
	if s == nil || s.Latest == nil {
		c.Detail = "no drift monitoring on record"
		return c
	}
	r := s.Latest
	v, t := r.Value, r.Threshold

	switch {
	case r.Status == domain.DriftBreached:
		excess := 1.0
		if t > 0 {
			excess = math.Min(1, math.Max(0, (v-t)/t))
		}
		c.Score = driftBreachBase + (100-driftBreachBase)*excess
		c.Material = true
	case v > t:
		c.Score = driftOverThreshold
	case t > 0:
		c.Score = driftWithinCeiling * math.Max(0, v) / t
	}

	c.Detail = fmt.Sprintf("Model drift: latest %s drift %s is %s (%s vs threshold %s)",
		r.DriftType, r.Metric, r.Status, formatNumber(v), formatNumber(t))
	return c
}

func scoreOperational(m *domain.AIModel) domain.RiskComponent {
	c := domain.RiskComponent{Name: domain.ComponentOperational, Weight: domain.WeightOperational}
	var factors []string
	if m.IsProduction() {
		c.Score += 30
		factors = append(factors, "production deployment")
	}
	switch n := len(m.Jurisdictions); {
	case n > 10:
		c.Score += 30
		factors = append(factors, fmt.Sprintf("%d jurisdictions", n))
	case n > 5:
		c.Score += 15
		factors = append(factors, fmt.Sprintf("%d jurisdictions", n))
	}
	if m.UseCaseCategory.IsHighStakes() {
		c.Score += 20
		factors = append(factors, fmt.Sprintf("high-stakes %s use case", m.UseCaseCategory))
	}
	if n := len(m.ExternalDataSources); n > 2 {
		c.Score += 20
		factors = append(factors, fmt.Sprintf("%d external data sources", n))
	}
	c.Material = c.Score >= materialScore

	if len(factors) == 0 {
		c.Detail = "no elevated operational factors"
	} else {
		c.Detail = "High-risk operational deployment: " + strings.Join(factors, ", ")
	}
	return c
}

// drivers lists material components by contribution, largest first.
func drivers(components []domain.RiskComponent) []string {
	material := make([]domain.RiskComponent, 0, len(components))
	for _, c := range components {
		if c.Material {
			material = append(material, c)
		}
	}
	sort.SliceStable(material, func(i, j int) bool {
		if material[i].Contribution != material[j].Contribution {
			return material[i].Contribution > material[j].Contribution
		}
		return componentOrder[material[i].Name] < componentOrder[material[j].Name]
	})
	out := make([]string, 0, len(material))
	for _, c := range material {
		out = append(out, c.Detail)
	}
	return out
}

func businessImpact(m *domain.AIModel, level domain.RiskLevel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level %s for %s %s model. ", level, m.LineOfBusiness, m.UseCaseCategory)
	fmt.Fprintf(&b, "Deployed in %d jurisdiction(s). ", len(m.Jurisdictions))
	if m.IsProduction() {
		b.WriteString("Production deployment requires immediate attention for high/critical risks.")
	} else {
		fmt.Fprintf(&b, "Currently in %s environment.", m.DeploymentEnvironment)
	}
	return b.String()
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ============================================================================
// Risk Service
// ============================================================================

// RiskService scores models on demand and records computed assessments.
type RiskService struct {
	summaries *SummaryService
	scorer    *RiskScorer
	evals     *EvaluationService
	metrics   *telemetry.Metrics
}

func NewRiskService(summaries *SummaryService, scorer *RiskScorer, evals *EvaluationService, metrics *telemetry.Metrics) *RiskService {
	return &RiskService{summaries: summaries, scorer: scorer, evals: evals, metrics: metrics}
}

// Score computes the current risk score. Nothing is persisted.
func (s *RiskService) Score(ctx context.Context, modelID string) (*domain.RiskScore, error) {
	summary, err := s.summaries.Summarize(ctx, modelID)
	if err != nil {
		return nil, err
	}
	score := s.scorer.Score(summary)
	s.metrics.RiskScored(string(score.Level))
	return score, nil
}

// ComputeAndRecord scores the model and appends the result as a risk
// assessment record.
func (s *RiskService) ComputeAndRecord(ctx context.Context, actor, modelID, mitigationPlan string) (*domain.RiskAssessmentRecord, error) {
	score, err := s.Score(ctx, modelID)
	if err != nil {
		return nil, err
	}
	rec := &domain.RiskAssessmentRecord{
		RiskScore:             score.Score,
		RiskLevel:             score.Level,
		PrimaryRiskDrivers:    score.Drivers,
		BusinessImpactSummary: score.BusinessImpact,
		MitigationPlan:        mitigationPlan,
	}
	if _, err := s.evals.Append(ctx, actor, modelID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
