package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-governance-service/internal/core/domain"
)

func TestSummarize_NoRecords(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.register(t, nil)

	summary, err := env.summaries.Summarize(context.Background(), m.ID)
	require.NoError(t, err)

	assert.Equal(t, m.ID, summary.Model.ID)
	assert.Nil(t, summary.Bias)
	assert.Nil(t, summary.Drift)
	assert.Nil(t, summary.Explainability)
	assert.Nil(t, summary.Controls)
	assert.Nil(t, summary.RAG)
	assert.Nil(t, summary.RiskAssessments)
	assert.Zero(t, summary.LineageSnapshots)
	assert.Positive(t, summary.AsOfSequence)
}

func TestSummarize_UnknownModel(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.summaries.Summarize(context.Background(), "model_missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	env.register(t, nil)
	_, err = env.summaries.Summarize(context.Background(), "model_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummarize_LatestByTimestamp(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.register(t, nil)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := biasRecord(domain.BiasUnacceptable, true)
	first.Timestamp = at
	second := biasRecord(domain.BiasAcceptable, false)
	second.Timestamp = at
	older := biasRecord(domain.BiasNeedsReview, false)
	older.Timestamp = at.Add(-time.Hour)

	env.appendRecord(t, m.ID, first)
	env.appendRecord(t, m.ID, second)
	env.appendRecord(t, m.ID, older)

	summary, err := env.summaries.Summarize(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Bias)

	assert.Equal(t, 3, summary.Bias.Count)
	assert.Equal(t, domain.BiasAcceptable, summary.Bias.Latest.Status, "equal timestamps resolve to the later append")
	assert.Equal(t, 1, summary.Bias.RegulatoryConcerns)
	assert.Equal(t, 1, summary.Bias.Unacceptable)
}

func TestSummarize_ControlGrouping(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.register(t, nil)

	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-02", domain.ControlPassed))
	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-01", domain.ControlPassed))
	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-01", domain.ControlFailed))
	env.appendRecord(t, m.ID, controlRecord("XAI-01", domain.ControlNotApplicable))

	summary, err := env.summaries.Summarize(context.Background(), m.ID)
	require.NoError(t, err)
	cs := summary.Controls
	require.NotNil(t, cs)

	assert.Equal(t, 4, cs.Records)
	require.Len(t, cs.Effective, 3)
	assert.Equal(t, "NAIC-AI-01", cs.Effective[0].ControlID)
	assert.Equal(t, domain.ControlFailed, cs.Effective[0].Status)
	assert.Equal(t, "NAIC-AI-02", cs.Effective[1].ControlID)
	assert.Equal(t, "XAI-01", cs.Effective[2].ControlID)

	assert.Equal(t, domain.ControlStats{Total: 3, Passed: 1, Failed: 1, NotApplicable: 1}, cs.Stats)
	assert.Equal(t, 11, cs.ApplicableMandatory)
	assert.NotContains(t, cs.UnevaluatedMandatory, "NAIC-AI-01")
	assert.NotContains(t, cs.UnevaluatedMandatory, "NAIC-AI-09", "does not apply to Pricing")
	assert.NotContains(t, cs.UnevaluatedMandatory, "XAI-01")
	assert.Contains(t, cs.UnevaluatedMandatory, "FAIR-01")
	assert.Len(t, cs.UnevaluatedMandatory, 9)
	assert.IsIncreasing(t, cs.UnevaluatedMandatory)
}

func TestSummarize_StreamsAndLineage(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)

	env.appendRecord(t, m.ID, driftRecord(0.3, 0.2, domain.DriftBreached))
	env.appendRecord(t, m.ID, driftRecord(0.1, 0.2, domain.DriftWithinTolerance))
	env.appendRecord(t, m.ID, explainRecord(70))
	env.appendRecord(t, m.ID, &domain.RAGEvaluation{
		EvalBatchID:              "batch-7",
		GroundingScore:           0.9,
		HallucinationRate:        0.05,
		ContextRelevanceScore:    0.8,
		Method:                   domain.RAGLLMJudge,
		Summary:                  "Copilot answers grounded in policy wording",
		CoverageMisstatementFlag: true,
	})
	_, err := env.lineage.Append(ctx, "mlops@carrier.com", m.ID, &domain.LineageEntry{
		DataSources:      []string{"policy_admin"},
		TrainingPipeline: "pricing-train@a1b2c3",
	})
	require.NoError(t, err)

	summary, err := env.summaries.Summarize(ctx, m.ID)
	require.NoError(t, err)

	require.NotNil(t, summary.Drift)
	assert.Equal(t, 2, summary.Drift.Count)
	assert.Equal(t, 1, summary.Drift.Breaches)
	assert.Equal(t, domain.DriftWithinTolerance, summary.Drift.Latest.Status)
	require.NotNil(t, summary.Explainability)
	assert.Equal(t, 70.0, *summary.Explainability.Latest.ExplainabilityScore)
	require.NotNil(t, summary.RAG)
	assert.Equal(t, 1, summary.RAG.CoverageMisstatements)
	assert.Equal(t, 1, summary.LineageSnapshots)
}

func TestSummarize_RepeatableWithoutWrites(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)
	env.appendRecord(t, m.ID, biasRecord(domain.BiasNeedsReview, false))
	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-03", domain.ControlNeedsReview))

	first, err := env.summaries.Summarize(ctx, m.ID)
	require.NoError(t, err)
	second, err := env.summaries.Summarize(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	env.appendRecord(t, m.ID, biasRecord(domain.BiasAcceptable, false))
	third, err := env.summaries.Summarize(ctx, m.ID)
	require.NoError(t, err)
	assert.Greater(t, third.AsOfSequence, first.AsOfSequence)
	assert.Equal(t, 2, third.Bias.Count)
}

func TestSummarizeAt_PointInTime(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)
	env.appendRecord(t, m.ID, biasRecord(domain.BiasAcceptable, false))

	head, err := env.log.Head(ctx)
	require.NoError(t, err)
	env.appendRecord(t, m.ID, biasRecord(domain.BiasUnacceptable, false))

	past, err := env.summaries.SummarizeAt(ctx, m.ID, head)
	require.NoError(t, err)
	assert.Equal(t, 1, past.Bias.Count)
	assert.Equal(t, domain.BiasAcceptable, past.Bias.Latest.Status)
	assert.Equal(t, head, past.AsOfSequence)
}
