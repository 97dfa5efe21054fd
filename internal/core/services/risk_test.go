package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-governance-service/internal/core/domain"
)

func scoredModel(env domain.DeploymentEnvironment) *domain.AIModel {
	m := sampleModel()
	m.ID = "model_abc123def456"
	m.DeploymentEnvironment = env
	return m
}

func componentByName(t *testing.T, score *domain.RiskScore, name domain.RiskComponentName) domain.RiskComponent {
	t.Helper()
	for _, c := range score.Components {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("component %s missing", name)
	return domain.RiskComponent{}
}

func TestRiskScorer_UnacceptableBiasDominates(t *testing.T) {
	stats := domain.ControlStats{}
	for i := 0; i < 15; i++ {
		stats.Add(domain.ControlPassed)
	}
	summary := &domain.GovernanceSummary{
		Model: scoredModel(domain.EnvironmentTest),
		Bias: &domain.BiasSummary{
			Stream: domain.Stream[domain.BiasEvaluation]{Count: 1, Latest: biasRecord(domain.BiasUnacceptable, true)},
		},
		Controls:       &domain.ControlSummary{Records: 15, Stats: stats},
		Explainability: &domain.ExplainabilitySummary{Stream: domain.Stream[domain.ExplainabilityEvaluation]{Count: 1, Latest: explainRecord(90)}},
	}

	score := NewRiskScorer().Score(summary)

	assert.Equal(t, 100.0, componentByName(t, score, domain.ComponentBias).Score)
	assert.Equal(t, 60.0, score.Score)
	assert.Equal(t, domain.RiskHigh, score.Level)
	require.NotEmpty(t, score.Drivers)
	assert.Contains(t, score.Drivers[0], "Unfair discrimination")
	assert.Len(t, score.Drivers, 1)
}

func TestRiskScorer_NoRecords(t *testing.T) {
	t.Run("non-production", func(t *testing.T) {
		score := NewRiskScorer().Score(&domain.GovernanceSummary{Model: scoredModel(domain.EnvironmentTest)})

		assert.Equal(t, 0.0, componentByName(t, score, domain.ComponentBias).Score)
		assert.Equal(t, 0.0, componentByName(t, score, domain.ComponentControls).Score)
		assert.Equal(t, 0.0, componentByName(t, score, domain.ComponentDrift).Score)
		assert.Equal(t, 40.0, componentByName(t, score, domain.ComponentExplainability).Score)
		assert.Equal(t, 20.0, componentByName(t, score, domain.ComponentOperational).Score)
		assert.Equal(t, 9.0, score.Score)
		assert.Equal(t, domain.RiskLow, score.Level)
		assert.Empty(t, score.Drivers)
	})

	t.Run("production", func(t *testing.T) {
		score := NewRiskScorer().Score(&domain.GovernanceSummary{Model: scoredModel(domain.EnvironmentProd)})

		assert.Equal(t, 80.0, componentByName(t, score, domain.ComponentExplainability).Score)
		assert.Equal(t, 50.0, componentByName(t, score, domain.ComponentOperational).Score)
		assert.Equal(t, 18.5, score.Score)
		require.Len(t, score.Drivers, 2)
		assert.Contains(t, score.Drivers[0], "Explainability gap")
		assert.Contains(t, score.Drivers[1], "operational")
	})
}

func TestRiskScorer_Drift(t *testing.T) {
	model := scoredModel(domain.EnvironmentTest)
	drift := func(r *domain.DriftEvaluation) *domain.GovernanceSummary {
		return &domain.GovernanceSummary{
			Model: model,
			Drift: &domain.DriftSummary{Stream: domain.Stream[domain.DriftEvaluation]{Count: 1, Latest: r}},
		}
	}

	within := NewRiskScorer().Score(drift(driftRecord(0.045, 0.10, domain.DriftWithinTolerance)))
	c := componentByName(t, within, domain.ComponentDrift)
	assert.Equal(t, 4.5, c.Score)
	assert.False(t, c.Material)
	for _, d := range within.Drivers {
		assert.NotContains(t, d, "drift")
	}

	breached := NewRiskScorer().Score(drift(driftRecord(0.15, 0.10, domain.DriftBreached)))
	c = componentByName(t, breached, domain.ComponentDrift)
	assert.Equal(t, 85.0, c.Score)
	assert.True(t, c.Material)
	assert.Contains(t, breached.Drivers[0], "drift")

	zero := NewRiskScorer().Score(drift(driftRecord(0.2, 0, domain.DriftBreached)))
	assert.Equal(t, 100.0, componentByName(t, zero, domain.ComponentDrift).Score)
}

func TestRiskScorer_Controls(t *testing.T) {
	stats := domain.ControlStats{}
	stats.Add(domain.ControlPassed)
	stats.Add(domain.ControlFailed)
	stats.Add(domain.ControlNeedsReview)
	stats.Add(domain.ControlNotApplicable)
	controls := &domain.ControlSummary{
		Records:              4,
		Stats:                stats,
		ApplicableMandatory:  10,
		UnevaluatedMandatory: []string{"NAIC-AI-05", "NAIC-AI-06", "NAIC-AI-07", "NAIC-AI-08", "NAIC-AI-10"},
	}

	nonProd := NewRiskScorer().Score(&domain.GovernanceSummary{Model: scoredModel(domain.EnvironmentTest), Controls: controls})
	c := componentByName(t, nonProd, domain.ComponentControls)
	assert.Equal(t, 50.0, c.Score)
	assert.True(t, c.Material)

	prod := NewRiskScorer().Score(&domain.GovernanceSummary{Model: scoredModel(domain.EnvironmentProd), Controls: controls})
	c = componentByName(t, prod, domain.ComponentControls)
	assert.Equal(t, 70.0, c.Score)
	assert.Contains(t, c.Detail, "5 mandatory production controls")
}

func TestRiskScorer_BoundsAndBands(t *testing.T) {
	summaries := []*domain.GovernanceSummary{
		{Model: scoredModel(domain.EnvironmentDev)},
		{Model: scoredModel(domain.EnvironmentProd)},
		{
			Model: func() *domain.AIModel {
				m := scoredModel(domain.EnvironmentProd)
				m.Jurisdictions = []string{"CA", "TX", "NY", "FL", "IL", "PA", "OH", "GA", "NC", "MI", "NJ"}
				m.ExternalDataSources = []string{"a", "b", "c"}
				return m
			}(),
			Bias:           &domain.BiasSummary{Stream: domain.Stream[domain.BiasEvaluation]{Count: 1, Latest: biasRecord(domain.BiasUnacceptable, true)}},
			Drift:          &domain.DriftSummary{Stream: domain.Stream[domain.DriftEvaluation]{Count: 1, Latest: driftRecord(5, 0.1, domain.DriftBreached)}},
			Explainability: &domain.ExplainabilitySummary{Stream: domain.Stream[domain.ExplainabilityEvaluation]{Count: 1, Latest: explainRecord(0)}},
		},
	}
	for _, s := range summaries {
		score := NewRiskScorer().Score(s)
		assert.GreaterOrEqual(t, score.Score, 0.0)
		assert.LessOrEqual(t, score.Score, 100.0)
		assert.Equal(t, domain.LevelFor(score.Score), score.Level)
		for _, c := range score.Components {
			assert.GreaterOrEqual(t, c.Score, 0.0)
			assert.LessOrEqual(t, c.Score, 100.0)
		}
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[float64]domain.RiskLevel{
		0:     domain.RiskLow,
		29.99: domain.RiskLow,
		30:    domain.RiskMedium,
		59.99: domain.RiskMedium,
		60:    domain.RiskHigh,
		79.99: domain.RiskHigh,
		80:    domain.RiskCritical,
		100:   domain.RiskCritical,
	}
	for score, want := range cases {
		assert.Equal(t, want, domain.LevelFor(score), "score %v", score)
	}
}

func TestDrivers_TieOrder(t *testing.T) {
	got := drivers([]domain.RiskComponent{
		{Name: domain.ComponentOperational, Contribution: 5, Material: true, Detail: "operational"},
		{Name: domain.ComponentDrift, Contribution: 5, Material: true, Detail: "drift"},
		{Name: domain.ComponentControls, Contribution: 5, Material: true, Detail: "controls"},
		{Name: domain.ComponentExplainability, Contribution: 16, Material: true, Detail: "explainability"},
		{Name: domain.ComponentBias, Contribution: 40, Material: false, Detail: "bias"},
	})
	assert.Equal(t, []string{"explainability", "controls", "drift", "operational"}, got)
}

func TestRiskScorer_Deterministic(t *testing.T) {
	summary := &domain.GovernanceSummary{
		Model: scoredModel(domain.EnvironmentProd),
		Bias:  &domain.BiasSummary{Stream: domain.Stream[domain.BiasEvaluation]{Count: 1, Latest: biasRecord(domain.BiasNeedsReview, false)}},
	}
	first := NewRiskScorer().Score(summary)
	second := NewRiskScorer().Score(summary)
	assert.Equal(t, first, second)
}

func TestRiskService_ComputeAndRecord(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)
	env.appendRecord(t, m.ID, biasRecord(domain.BiasUnacceptable, true))

	rec, err := env.risk.ComputeAndRecord(ctx, "cro@carrier.com", m.ID, "retrain without territory")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
	assert.Equal(t, m.ID, rec.ModelID)
	assert.False(t, rec.Timestamp.IsZero())

	latest, err := env.evals.LatestByModel(ctx, domain.KindRiskAssessment, m.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.RiskScore, latest.(*domain.RiskAssessmentRecord).RiskScore)

	entries, err := env.audit.List(ctx, domain.AuditFilter{ActionType: domain.ActionAddRiskAssessment})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRiskService_Score_UnknownModel(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, nil)

	_, err := env.risk.Score(context.Background(), "model_missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestRiskService_ScoreReflectsNewRecords(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)

	env.appendRecord(t, m.ID, driftRecord(0.045, 0.10, domain.DriftWithinTolerance))
	low, err := env.risk.Score(ctx, m.ID)
	require.NoError(t, err)

	later := driftRecord(0.15, 0.10, domain.DriftBreached)
	later.Timestamp = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	env.appendRecord(t, m.ID, later)
	high, err := env.risk.Score(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, 4.5, componentByName(t, low, domain.ComponentDrift).Score)
	assert.Equal(t, 85.0, componentByName(t, high, domain.ComponentDrift).Score)
}

func TestRiskService_ProdWithoutControlEvaluations(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, func(m *domain.AIModel) { m.DeploymentEnvironment = domain.EnvironmentProd })
	env.appendRecord(t, m.ID, biasRecord(domain.BiasAcceptable, false))
	env.appendRecord(t, m.ID, explainRecord(85))

	summary, err := env.summaries.Summarize(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Controls)
	assert.Zero(t, summary.Controls.Records)
	assert.Equal(t, 11, summary.Controls.ApplicableMandatory)
	assert.Len(t, summary.Controls.UnevaluatedMandatory, 11)

	before, err := env.risk.Score(ctx, m.ID)
	require.NoError(t, err)
	unevaluated := componentByName(t, before, domain.ComponentControls)
	assert.Equal(t, 40.0, unevaluated.Score)
	assert.True(t, unevaluated.Material)
	assert.Contains(t, unevaluated.Detail, "11 mandatory production controls")

	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-01", domain.ControlPassed))
	after, err := env.risk.Score(ctx, m.ID)
	require.NoError(t, err)
	onePassed := componentByName(t, after, domain.ComponentControls)
	assert.Equal(t, 36.36, onePassed.Score)
	assert.Less(t, onePassed.Score, unevaluated.Score, "a passed control never raises the controls score")
	assert.LessOrEqual(t, after.Score, before.Score)
}
