package services

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/testutil"
)

// seedGovernedModel registers a model with bias, drift, explainability and
// control records but no RAG evaluations.
func seedGovernedModel(t *testing.T, env *testEnv) *domain.AIModel {
	t.Helper()
	m := env.register(t, nil)
	env.appendRecord(t, m.ID, biasRecord(domain.BiasNeedsReview, false))
	env.appendRecord(t, m.ID, driftRecord(0.045, 0.10, domain.DriftWithinTolerance))
	env.appendRecord(t, m.ID, explainRecord(85))
	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-01", domain.ControlPassed))
	env.appendRecord(t, m.ID, controlRecord("NAIC-AI-02", domain.ControlFailed))
	_, err := env.lineage.Append(context.Background(), "", m.ID, &domain.LineageEntry{
		DataSources:      []string{"policy_admin", "claims_history"},
		TrainingPipeline: "pricing-train",
	})
	require.NoError(t, err)
	return m
}

func readArtifact(t *testing.T, env *testEnv, packID, name string) []byte {
	t.Helper()
	rc, err := env.packs.OpenArtifact(context.Background(), packID, name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestEvidencePackService_Generate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := seedGovernedModel(t, env)

	pack, err := env.packs.Generate(ctx, "examiner@doi.gov", m.ID)
	require.NoError(t, err)

	assert.Regexp(t, `^pack_[0-9a-f]{12}$`, pack.ID)
	assert.Equal(t, m.ID, pack.ModelID)
	assert.Equal(t, "examiner@doi.gov", pack.CreatedBy)
	assert.Equal(t, []string{"CA", "TX"}, pack.JurisdictionsCovered)
	assert.Equal(t, []domain.PackSection{
		domain.SectionModel,
		domain.SectionLineage,
		domain.SectionControls,
		domain.SectionExplainability,
		domain.SectionBias,
		domain.SectionDrift,
		domain.SectionRisk,
		domain.SectionAuditSummary,
	}, pack.IncludedSections)
	assert.Equal(t, "memory://evidence_packs/"+pack.ID, pack.Location)
	assert.Equal(t, pack.Location+"/evidence_pack.zip", pack.ZipPath)

	files := env.artifacts.Files(pack.ID)
	assert.Contains(t, files, "model.md")
	assert.Contains(t, files, "risk.md")
	assert.Contains(t, files, domain.ManifestFileName)
	assert.Contains(t, files, domain.ArchiveFileName)
	assert.NotContains(t, files, "rag.md")
	assert.NotContains(t, files, "philosophy.md")

	stored, err := env.packs.Get(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, pack.IncludedSections, stored.IncludedSections)
	assert.Equal(t, pack.AsOfSequence, stored.AsOfSequence)

	entries, err := env.audit.List(ctx, domain.AuditFilter{ActionType: domain.ActionGenerateEvidencePack})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pack.ID, entries[0].EntityID)
	assert.Equal(t, domain.EntityEvidencePack, entries[0].EntityType)
	assert.Equal(t, m.ID, entries[0].ModelID)

	listed, err := env.packs.List(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestEvidencePackService_Documents(t *testing.T) {
	env := newTestEnv(t, nil)
	m := seedGovernedModel(t, env)
	pack, err := env.packs.Generate(context.Background(), "", m.ID)
	require.NoError(t, err)

	model := string(readArtifact(t, env, pack.ID, "model.md"))
	assert.Contains(t, model, "# AI Model Details")
	assert.Contains(t, model, m.ID)

	controls := string(readArtifact(t, env, pack.ID, "controls.md"))
	assert.Contains(t, controls, "# Governance Controls & Evaluations")
	assert.Contains(t, controls, "NAIC-AI-02")

	risk := string(readArtifact(t, env, pack.ID, "risk.md"))
	assert.Contains(t, risk, "Control failures")

	var manifest domain.PackManifest
	require.NoError(t, yaml.Unmarshal(readArtifact(t, env, pack.ID, domain.ManifestFileName), &manifest))
	assert.Equal(t, pack.ID, manifest.EvidencePackID)
	assert.Equal(t, pack.IncludedSections, manifest.IncludedSections)
	require.Len(t, manifest.Documents, len(pack.IncludedSections))
	for _, doc := range manifest.Documents {
		data := readArtifact(t, env, pack.ID, doc.File)
		sum := sha256.Sum256(data)
		assert.Equal(t, hex.EncodeToString(sum[:]), doc.SHA256, doc.File)
		assert.Equal(t, len(data), doc.Bytes, doc.File)
	}

	archive := readArtifact(t, env, pack.ID, domain.ArchiveFileName)
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.True(t, f.Modified.Equal(pack.CreatedAt), f.Name)
	}
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, domain.ManifestFileName)
	assert.Len(t, names, len(pack.IncludedSections)+1)
}

func TestEvidencePackService_MinimalModel(t *testing.T) {
	env := newTestEnv(t, nil)
	m := env.register(t, nil)

	pack, err := env.packs.Generate(context.Background(), "", m.ID)
	require.NoError(t, err)

	assert.Equal(t, []domain.PackSection{domain.SectionModel, domain.SectionRisk, domain.SectionAuditSummary}, pack.IncludedSections)
	assert.Contains(t, string(readArtifact(t, env, pack.ID, "risk.md")), "No significant risks identified")
	assert.Equal(t, domain.SystemActor, pack.CreatedBy)
}

func TestEvidencePackService_IncludesPhilosophy(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)
	_, err := env.philosophy.Upsert(ctx, "", orgPhilosophy(), false)
	require.NoError(t, err)

	pack, err := env.packs.Generate(ctx, "", m.ID)
	require.NoError(t, err)

	assert.Contains(t, pack.IncludedSections, domain.SectionPhilosophy)
	doc := string(readArtifact(t, env, pack.ID, "philosophy.md"))
	assert.Contains(t, doc, "Low appetite for unexplained pricing decisions.")
}

func TestEvidencePackService_RegenerationIsStable(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := seedGovernedModel(t, env)

	first, err := env.packs.Generate(ctx, "", m.ID)
	require.NoError(t, err)
	second, err := env.packs.Generate(ctx, "", m.ID)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, first.IncludedSections, second.IncludedSections)
	for _, section := range first.IncludedSections {
		assert.Equal(t,
			readArtifact(t, env, first.ID, section.FileName()),
			readArtifact(t, env, second.ID, section.FileName()),
			section)
	}

	listed, err := env.packs.List(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestEvidencePackService_UnknownModel(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, nil)

	_, err := env.packs.Generate(context.Background(), "", "model_missing")

	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.NotErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestEvidencePackService_StagingFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	m := seedGovernedModel(t, env)
	before := auditCount(t, env)

	staging := new(testutil.MockArtifactStaging)
	staging.On("Write", "model.md", mock.Anything).Return(nil)
	staging.On("Write", mock.Anything, mock.Anything).Return(assert.AnError)
	staging.On("Discard").Return(nil)
	artifacts := new(testutil.MockArtifactStore)
	artifacts.On("Stage", mock.Anything, mock.Anything).Return(ports.ArtifactStaging(staging), nil)

	svc := env.packServiceWith(artifacts)
	_, err := svc.Generate(context.Background(), "", m.ID)

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	staging.AssertCalled(t, "Discard")
	staging.AssertNotCalled(t, "Commit")
	artifacts.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)

	packs, err := env.packs.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, packs)
	assert.Equal(t, before, auditCount(t, env))
}

func TestEvidencePackService_MetadataFailureRemovesArtifacts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := seedGovernedModel(t, env)
	env.packs.newPackID = func() string { return "pack_000000000001" }

	env.log.FailCollection(domain.CollectionEvidencePacks)
	_, err := env.packs.Generate(ctx, "", m.ID)
	env.log.FailCollection("")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, domain.ErrAuditWriteFailed)
	assert.Empty(t, env.artifacts.Files("pack_000000000001"))

	_, err = env.packs.Get(ctx, "pack_000000000001")
	assert.ErrorIs(t, err, domain.ErrEvidencePackNotFound)

	pack, err := env.packs.Generate(ctx, "", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "pack_000000000001", pack.ID)
}

func TestEvidencePackService_OpenArtifact(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	m := env.register(t, nil)
	pack, err := env.packs.Generate(ctx, "", m.ID)
	require.NoError(t, err)

	_, err = env.packs.OpenArtifact(ctx, "pack_missing", "model.md")
	assert.ErrorIs(t, err, domain.ErrEvidencePackNotFound)

	_, err = env.packs.OpenArtifact(ctx, pack.ID, "rag.md")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}
