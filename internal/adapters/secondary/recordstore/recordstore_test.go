package recordstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-governance-service/internal/adapters/secondary/memory"
	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

func put(t *testing.T, log ports.RecordLog, collection, key string, v any) int64 {
	t.Helper()
	data := ports.Tombstone
	if v != nil {
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	seqs, err := log.Append(context.Background(), ports.Append{Collection: collection, Key: key, Data: data})
	require.NoError(t, err)
	return seqs[0]
}

func TestDefaultControls(t *testing.T) {
	controls, err := DefaultControls()
	require.NoError(t, err)
	require.Len(t, controls, 15)

	ids := map[string]bool{}
	for _, c := range controls {
		require.NoError(t, c.Validate(), c.ControlID)
		ids[c.ControlID] = true
	}
	assert.Len(t, ids, 15)
	assert.True(t, ids["NAIC-AI-01"])
	assert.True(t, ids["XAI-01"])
}

func TestControlRepository_Overlay(t *testing.T) {
	ctx := context.Background()
	log := memory.NewRecordLog()
	repo, err := NewControlCatalogRepository(log)
	require.NoError(t, err)

	base, err := repo.Get(ctx, "NAIC-AI-01", 0)
	require.NoError(t, err)

	override := *base
	override.Description = "Carrier-specific unfair discrimination testing"
	put(t, log, domain.CollectionControls, "NAIC-AI-01", override)
	beforeDelete := put(t, log, domain.CollectionControls, "CARRIER-01", &domain.ControlCatalogEntry{
		ControlID:          "CARRIER-01",
		FrameworkReference: "Internal",
		Category:           base.Category,
		Description:        "Quarterly model inventory attestation",
	})
	put(t, log, domain.CollectionControls, "XAI-01", nil)

	got, err := repo.Get(ctx, "NAIC-AI-01", 0)
	require.NoError(t, err)
	assert.Equal(t, "Carrier-specific unfair discrimination testing", got.Description)

	_, err = repo.Get(ctx, "XAI-01", 0)
	assert.ErrorIs(t, err, domain.ErrControlNotFound)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 15)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ControlID, list[i].ControlID)
	}

	// the tombstone is not visible before its sequence
	old, err := repo.List(ctx, beforeDelete)
	require.NoError(t, err)
	assert.Len(t, old, 16)
	_, err = repo.Get(ctx, "XAI-01", beforeDelete)
	assert.NoError(t, err)
}

func TestModelRepository_Versions(t *testing.T) {
	ctx := context.Background()
	log := memory.NewRecordLog()
	repo := NewModelRepository(log)

	created := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	m := &domain.AIModel{
		ID:             "model_aaa",
		Name:           "Auto Claims Triage",
		Version:        "1.0",
		LineOfBusiness: domain.LineOfBusinessPersonalAuto,
		Jurisdictions:  []string{"CA"},
		CreatedAt:      created,
	}
	first := put(t, log, domain.CollectionModels, m.ID, m)
	m.Version = "1.1"
	put(t, log, domain.CollectionModels, m.ID, m)
	put(t, log, domain.CollectionModels, "model_bbb", &domain.AIModel{
		ID:             "model_bbb",
		Name:           "Homeowners Pricing",
		LineOfBusiness: domain.LineOfBusinessHomeowners,
		Jurisdictions:  []string{"FL", "TX"},
		CreatedAt:      created.Add(time.Hour),
	})

	got, err := repo.Get(ctx, "model_aaa", 0)
	require.NoError(t, err)
	assert.Equal(t, "1.1", got.Version)

	got, err = repo.Get(ctx, "model_aaa", first)
	require.NoError(t, err)
	assert.Equal(t, "1.0", got.Version)

	_, err = repo.Get(ctx, "", 0)
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	_, err = repo.Get(ctx, "model_zzz", 0)
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	all, err := repo.List(ctx, domain.ModelFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "model_aaa", all[0].ID)

	fl, err := repo.List(ctx, domain.ModelFilter{Jurisdiction: "FL"}, 0)
	require.NoError(t, err)
	require.Len(t, fl, 1)
	assert.Equal(t, "model_bbb", fl[0].ID)
}

func TestEvaluationRepository_LatestByModel(t *testing.T) {
	ctx := context.Background()
	log := memory.NewRecordLog()
	repo := NewEvaluationRepository(log)
	collection := domain.KindDrift.Collection()

	ts := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	put(t, log, collection, "model_aaa", &domain.DriftEvaluation{ModelID: "model_aaa", Metric: "psi", Value: 0.1, Timestamp: ts})
	tie := put(t, log, collection, "model_aaa", &domain.DriftEvaluation{ModelID: "model_aaa", Metric: "psi", Value: 0.3, Timestamp: ts})
	put(t, log, collection, "model_aaa", &domain.DriftEvaluation{ModelID: "model_aaa", Metric: "psi", Value: 0.2, Timestamp: ts.Add(-time.Hour)})
	put(t, log, collection, "model_bbb", &domain.DriftEvaluation{ModelID: "model_bbb", Metric: "psi", Value: 0.9, Timestamp: ts})

	all, err := repo.ListByModel(ctx, domain.KindDrift, "model_aaa", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	latest, err := repo.LatestByModel(ctx, domain.KindDrift, "model_aaa", 0)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, tie, latest.Seq)
	assert.InDelta(t, 0.3, latest.Record.(*domain.DriftEvaluation).Value, 1e-9)

	none, err := repo.LatestByModel(ctx, domain.KindBias, "model_aaa", 0)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = repo.ListByModel(ctx, "fairness", "model_aaa", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPhilosophyRepository_Chain(t *testing.T) {
	ctx := context.Background()
	log := memory.NewRecordLog()
	repo := NewPhilosophyRepository(log)

	org := &domain.GovernancePhilosophy{Scope: domain.ScopeOrg, ScopeRef: domain.OrgScopeRef, RiskAppetite: "Moderate"}
	lob := &domain.GovernancePhilosophy{Scope: domain.ScopeLineOfBusiness, ScopeRef: "Homeowners", RiskAppetite: "Low"}
	put(t, log, domain.CollectionPhilosophy, org.Key().RecordKey(), org)
	put(t, log, domain.CollectionPhilosophy, lob.Key().RecordKey(), lob)
	put(t, log, domain.CollectionPhilosophy, lob.Key().RecordKey(), nil)

	_, err := repo.Get(ctx, lob.Key(), 0)
	assert.ErrorIs(t, err, domain.ErrPhilosophyNotFound)

	chain, err := repo.Chain(ctx, []domain.ScopeKey{lob.Key(), org.Key()}, 0)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Nil(t, chain[0])
	require.NotNil(t, chain[1])
	assert.Equal(t, "Moderate", chain[1].RiskAppetite)

	list, err := repo.List(ctx, domain.ScopeOrg, "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAuditAndPackRepositories(t *testing.T) {
	ctx := context.Background()
	log := memory.NewRecordLog()
	audit := NewAuditLogRepository(log)
	packs := NewEvidencePackRepository(log)

	last, err := audit.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	put(t, log, domain.CollectionAuditLog, "model_aaa", &domain.AuditLogEntry{Index: 1, ModelID: "model_aaa", ActionType: domain.ActionCreateModel})
	put(t, log, domain.CollectionAuditLog, "", &domain.AuditLogEntry{Index: 2, ActionType: domain.ActionCreateControl})
	put(t, log, domain.CollectionAuditLog, "model_aaa", &domain.AuditLogEntry{Index: 3, ModelID: "model_aaa", ActionType: domain.ActionAddDrift})

	byModel, err := audit.List(ctx, domain.AuditFilter{ModelID: "model_aaa"}, 0)
	require.NoError(t, err)
	assert.Len(t, byModel, 2)

	byAction, err := audit.List(ctx, domain.AuditFilter{ActionType: domain.ActionCreateControl}, 0)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, int64(2), byAction[0].Index)

	last, err = audit.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last.Index)

	put(t, log, domain.CollectionEvidencePacks, "model_aaa", &domain.EvidencePack{ID: "pack_000000000001", ModelID: "model_aaa"})
	put(t, log, domain.CollectionEvidencePacks, "model_bbb", &domain.EvidencePack{ID: "pack_000000000002", ModelID: "model_bbb"})

	got, err := packs.Get(ctx, "pack_000000000002")
	require.NoError(t, err)
	assert.Equal(t, "model_bbb", got.ModelID)

	_, err = packs.Get(ctx, "pack_missing")
	assert.ErrorIs(t, err, domain.ErrEvidencePackNotFound)

	list, err := packs.List(ctx, "model_aaa")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
