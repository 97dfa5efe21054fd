package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"model-governance-service/internal/adapters/secondary/memory"
	"model-governance-service/internal/adapters/secondary/recordstore"
	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/testutil"
)

// stepClock advances one second on every reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	log       *testutil.FaultyRecordLog
	artifacts *memory.ArtifactStore

	modelRepo ports.ModelRepository
	auditRepo ports.AuditLogRepository
	packRepo  ports.EvidencePackRepository

	packDeps EvidencePackDeps

	recorder   *AuditRecorder
	models     *ModelService
	lineage    *LineageService
	evals      *EvaluationService
	summaries  *SummaryService
	scorer     *RiskScorer
	risk       *RiskService
	controls   *ControlService
	philosophy *PhilosophyService
	packs      *EvidencePackService
	audit      *AuditService
}

func newTestEnv(t *testing.T, completer ports.TextCompleter) *testEnv {
	t.Helper()

	recordLog := testutil.NewFaultyRecordLog(memory.NewRecordLog())
	models := recordstore.NewModelRepository(recordLog)
	evals := recordstore.NewEvaluationRepository(recordLog)
	lineage := recordstore.NewLineageRepository(recordLog)
	controls, err := recordstore.NewControlCatalogRepository(recordLog)
	require.NoError(t, err)
	philosophy := recordstore.NewPhilosophyRepository(recordLog)
	audit := recordstore.NewAuditLogRepository(recordLog)
	packs := recordstore.NewEvidencePackRepository(recordLog)
	artifacts := memory.NewArtifactStore()

	recorder := NewAuditRecorder(recordLog, audit, "", nil).WithClock(newStepClock().Now)
	summaries := NewSummaryService(recordLog, models, evals, lineage, controls)
	scorer := NewRiskScorer()
	evalSvc := NewEvaluationService(models, evals, controls, recorder, nil)
	packDeps := EvidencePackDeps{
		Log:        recordLog,
		Models:     models,
		Evals:      evals,
		Lineage:    lineage,
		Controls:   controls,
		Philosophy: philosophy,
		Audit:      audit,
		Packs:      packs,
		Artifacts:  artifacts,
	}

	return &testEnv{
		log:        recordLog,
		artifacts:  artifacts,
		modelRepo:  models,
		auditRepo:  audit,
		packRepo:   packs,
		packDeps:   packDeps,
		recorder:   recorder,
		models:     NewModelService(models, recorder),
		lineage:    NewLineageService(models, lineage, recorder),
		evals:      evalSvc,
		summaries:  summaries,
		scorer:     scorer,
		risk:       NewRiskService(summaries, scorer, evalSvc, nil),
		controls:   NewControlService(controls, recorder),
		philosophy: NewPhilosophyService(philosophy, models, recorder, completer, nil),
		packs:      NewEvidencePackService(packDeps, summaries, scorer, recorder, nil, 50),
		audit:      NewAuditService(audit),
	}
}

// packServiceWith builds a pack service over the same records with a
// different artifact store.
func (e *testEnv) packServiceWith(artifacts ports.ArtifactStore) *EvidencePackService {
	deps := e.packDeps
	deps.Artifacts = artifacts
	return NewEvidencePackService(deps, e.summaries, e.scorer, e.recorder, nil, 50)
}

func sampleModel() *domain.AIModel {
	return &domain.AIModel{
		Name:                  "Personal Auto Pricing GBM",
		Version:               "2.1.0",
		ModelType:             domain.ModelTypeRegressor,
		BusinessDomain:        domain.BusinessDomainPCPersonal,
		LineOfBusiness:        domain.LineOfBusinessPersonalAuto,
		UseCaseCategory:       domain.UseCasePricing,
		DetailedUseCase:       "Rate relativities for new business",
		OwnerTeam:             "Pricing Analytics",
		ProductOrProgram:      "Auto 2025",
		Jurisdictions:         []string{"CA", "TX"},
		DeploymentEnvironment: domain.EnvironmentTest,
		DeploymentDetails:     map[string]any{"endpoint": "pricing-v2"},
		ExternalDataSources:   []string{"credit_bureau"},
	}
}

func (e *testEnv) register(t *testing.T, mutate func(m *domain.AIModel)) *domain.AIModel {
	t.Helper()
	m := sampleModel()
	if mutate != nil {
		mutate(m)
	}
	created, err := e.models.Register(context.Background(), "analyst@carrier.com", m)
	require.NoError(t, err)
	return created
}

func (e *testEnv) appendRecord(t *testing.T, modelID string, rec domain.EvaluationRecord) {
	t.Helper()
	_, err := e.evals.Append(context.Background(), "analyst@carrier.com", modelID, rec)
	require.NoError(t, err)
}

func biasRecord(status domain.BiasStatus, flag bool) *domain.BiasEvaluation {
	return &domain.BiasEvaluation{
		TestScope:                   "new business quotes",
		ProtectedOrProhibitedFactor: "race (BISG proxy)",
		TestType:                    "disparate_impact",
		Metric:                      "adverse_impact_ratio",
		Value:                       0.72,
		Threshold:                   0.8,
		Status:                      status,
		CustomerHarmRisk:            domain.HarmLow,
		RegulatoryConcernFlag:       flag,
	}
}

func driftRecord(value, threshold float64, status domain.DriftStatus) *domain.DriftEvaluation {
	return &domain.DriftEvaluation{
		DriftType:              domain.DriftData,
		Metric:                 "psi",
		Value:                  value,
		Threshold:              threshold,
		Status:                 status,
		ObservationWindow:      "30d",
		InsuranceImpactSummary: "Mix shift in young drivers",
	}
}

func explainRecord(score float64) *domain.ExplainabilityEvaluation {
	return &domain.ExplainabilityEvaluation{
		DecisionContext:     "premium quote",
		Method:              domain.MethodSHAP,
		Summary:             "Top drivers are vehicle age and territory",
		KeyFindings:         []string{"territory dominates"},
		ExplainabilityScore: &score,
	}
}

func controlRecord(controlID string, status domain.ControlStatus) *domain.ControlEvaluation {
	return &domain.ControlEvaluation{
		ControlID: controlID,
		Status:    status,
		Rationale: "reviewed by model risk",
	}
}

func ptr[T any](v T) *T { return &v }

// mustField extracts one top-level field from a JSON object.
func mustField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	v, ok := fields[field]
	require.True(t, ok, "field %s missing from %s", field, raw)
	return v
}
