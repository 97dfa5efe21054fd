package services

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/telemetry"
)

// EvidencePackDeps groups the repositories a pack is assembled from.
type EvidencePackDeps struct {
	Log        ports.RecordLog
	Models     ports.ModelRepository
	Evals      ports.EvaluationRepository
	Lineage    ports.LineageRepository
	Controls   ports.ControlCatalogRepository
	Philosophy ports.PhilosophyRepository
	Audit      ports.AuditLogRepository
	Packs      ports.EvidencePackRepository
	Artifacts  ports.ArtifactStore
}

// EvidencePackService generates immutable evidence packs. A pack is read at
// one record sequence, rendered, staged and published before its metadata
// and audit entry are committed; any failure leaves no pack behind.
type EvidencePackService struct {
	deps       EvidencePackDeps
	summaries  *SummaryService
	scorer     *RiskScorer
	recorder   *AuditRecorder
	metrics    *telemetry.Metrics
	auditLimit int
	newPackID  func() string
}

func NewEvidencePackService(
	deps EvidencePackDeps,
	summaries *SummaryService,
	scorer *RiskScorer,
	recorder *AuditRecorder,
	metrics *telemetry.Metrics,
	auditLimit int,
) *EvidencePackService {
	if auditLimit <= 0 {
		auditLimit = 50
	}
	return &EvidencePackService{
		deps:       deps,
		summaries:  summaries,
		scorer:     scorer,
		recorder:   recorder,
		metrics:    metrics,
		auditLimit: auditLimit,
		newPackID:  domain.NewEvidencePackID,
	}
}

// Generate builds and publishes a new pack for the model.
func (s *EvidencePackService) Generate(ctx context.Context, actor, modelID string) (pack *domain.EvidencePack, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "evidence_pack.generate",
		trace.WithAttributes(attribute.String("model_id", modelID)))
	start := time.Now()
	defer func() {
		s.metrics.PackGenerated(err == nil, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
		}
		span.End()
	}()

	head, err := s.deps.Log.Head(ctx)
	if err != nil {
		return nil, generationFailed("read record head", err)
	}
	model, err := requireModel(ctx, s.deps.Models, modelID, head)
	if err != nil {
		return nil, err
	}
	if actor == "" {
		actor = domain.SystemActor
	}

	pack = &domain.EvidencePack{
		ID:                   s.newPackID(),
		ModelID:              model.ID,
		CreatedAt:            s.recorder.Now(),
		CreatedBy:            actor,
		JurisdictionsCovered: append([]string{}, model.Jurisdictions...),
		AsOfSequence:         head,
	}
	span.SetAttributes(attribute.String("pack_id", pack.ID), attribute.Int64("as_of_sequence", head))

	snap, err := s.snapshot(ctx, model, head)
	if err != nil {
		return nil, generationFailed("snapshot", err)
	}
	files, err := s.render(ctx, pack, snap)
	if err != nil {
		return nil, generationFailed("render", err)
	}
	if err := s.publish(ctx, pack, files); err != nil {
		return nil, generationFailed("publish", err)
	}

	_, err = s.recorder.Commit(ctx, actor, func(ctx context.Context, b *Batch) error {
		if err := b.Append(domain.CollectionEvidencePacks, pack.ModelID, pack); err != nil {
			return err
		}
		return b.Audit(domain.ActionGenerateEvidencePack, domain.EntityEvidencePack, pack.ID, pack.ModelID, nil, pack)
	})
	if err != nil {
		if rmErr := s.deps.Artifacts.Remove(context.WithoutCancel(ctx), pack.ID); rmErr != nil {
			log.WithError(rmErr).WithField("pack_id", pack.ID).Warn("Failed to remove artifacts of unrecorded pack")
		}
		return nil, generationFailed("record metadata", err)
	}

	log.WithFields(log.Fields{
		"pack_id":  pack.ID,
		"model_id": pack.ModelID,
		"sections": len(pack.IncludedSections),
	}).Info("Evidence pack generated")
	return pack, nil
}

// generationFailed hides the cause from callers but keeps it matchable.
func generationFailed(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrGenerationFailed, step, err)
}

func (s *EvidencePackService) snapshot(ctx context.Context, model *domain.AIModel, asOf int64) (*packSnapshot, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "evidence_pack.snapshot")
	defer span.End()

	summary, err := s.summaries.SummarizeAt(ctx, model.ID, asOf)
	if err != nil {
		return nil, err
	}
	snap := &packSnapshot{
		model:       model,
		summary:     summary,
		risk:        s.scorer.Score(summary),
		evaluations: make(map[domain.EvaluationKind][]domain.StoredEvaluation, len(domain.EvaluationKinds)),
	}
	for _, kind := range domain.EvaluationKinds {
		recs, err := s.deps.Evals.ListByModel(ctx, kind, model.ID, asOf)
		if err != nil {
			return nil, err
		}
		snap.evaluations[kind] = recs
	}
	if snap.lineage, err = s.deps.Lineage.ListByModel(ctx, model.ID, asOf); err != nil {
		return nil, err
	}
	if snap.catalog, err = s.deps.Controls.List(ctx, asOf); err != nil {
		return nil, err
	}
	if snap.philosophy, err = resolvePhilosophy(ctx, s.deps.Philosophy, model, asOf); err != nil {
		return nil, err
	}

	entries, err := s.deps.Audit.List(ctx, domain.AuditFilter{ModelID: model.ID}, asOf)
	if err != nil {
		return nil, err
	}
	// pack generations are left out so regenerating does not change the summary
	audit := make([]*domain.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		if e.EntityType != domain.EntityEvidencePack {
			audit = append(audit, e)
		}
	}
	if len(audit) > s.auditLimit {
		audit = audit[len(audit)-s.auditLimit:]
	}
	snap.audit = audit
	return snap, nil
}

type packFile struct {
	name string
	data []byte
}

// render produces section documents, the manifest and the archive. Sections
// render concurrently but are assembled in their fixed order.
func (s *EvidencePackService) render(ctx context.Context, pack *domain.EvidencePack, snap *packSnapshot) ([]packFile, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "evidence_pack.render")
	defer span.End()

	type rendered struct {
		doc []byte
		ok  bool
	}
	results := make([]rendered, len(domain.PackSections))
	g, gctx := errgroup.WithContext(ctx)
	for i, section := range domain.PackSections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, ok, err := renderSection(section, snap)
			if err != nil {
				return fmt.Errorf("section %s: %w", section, err)
			}
			results[i] = rendered{doc: doc, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := domain.PackManifest{
		EvidencePackID:       pack.ID,
		ModelID:              pack.ModelID,
		CreatedAt:            formatTime(pack.CreatedAt),
		CreatedBy:            pack.CreatedBy,
		AsOfSequence:         pack.AsOfSequence,
		JurisdictionsCovered: pack.JurisdictionsCovered,
	}
	var files []packFile
	for i, section := range domain.PackSections {
		r := results[i]
		if !r.ok {
			continue
		}
		pack.IncludedSections = append(pack.IncludedSections, section)
		sum := sha256.Sum256(r.doc)
		manifest.Documents = append(manifest.Documents, domain.ManifestEntry{
			Section: section,
			File:    section.FileName(),
			SHA256:  hex.EncodeToString(sum[:]),
			Bytes:   len(r.doc),
		})
		files = append(files, packFile{name: section.FileName(), data: r.doc})
	}
	manifest.IncludedSections = pack.IncludedSections

	manifestData, err := yaml.Marshal(&manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	files = append(files, packFile{name: domain.ManifestFileName, data: manifestData})

	archive, err := buildArchive(files, pack.CreatedAt)
	if err != nil {
		return nil, err
	}
	files = append(files, packFile{name: domain.ArchiveFileName, data: archive})
	span.SetAttributes(attribute.Int("sections", len(pack.IncludedSections)))
	return files, nil
}

// buildArchive zips files in name order with a fixed modification time.
func buildArchive(files []packFile, modified time.Time) ([]byte, error) {
	sorted := make([]packFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range sorted {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.name,
			Method:   zip.Deflate,
			Modified: modified.UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("add %s to archive: %w", f.name, err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("write %s to archive: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// publish writes every file to a staging area and commits it. Staging is
// discarded on any write failure.
func (s *EvidencePackService) publish(ctx context.Context, pack *domain.EvidencePack, files []packFile) error {
	_, span := telemetry.Tracer().Start(ctx, "evidence_pack.publish")
	defer span.End()

	staging, err := s.deps.Artifacts.Stage(ctx, pack.ID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := staging.Write(f.name, f.data); err != nil {
			discard(staging, pack.ID)
			return fmt.Errorf("stage %s: %w", f.name, err)
		}
	}
	location, err := staging.Commit()
	if err != nil {
		discard(staging, pack.ID)
		return fmt.Errorf("commit artifacts: %w", err)
	}
	pack.Location = location
	pack.ZipPath = location + "/" + domain.ArchiveFileName
	return nil
}

func discard(staging ports.ArtifactStaging, packID string) {
	if err := staging.Discard(); err != nil {
		log.WithError(err).WithField("pack_id", packID).Warn("Failed to discard pack staging")
	}
}

func (s *EvidencePackService) Get(ctx context.Context, id string) (*domain.EvidencePack, error) {
	return s.deps.Packs.Get(ctx, id)
}

// List returns packs in creation order. An empty modelID lists every pack.
func (s *EvidencePackService) List(ctx context.Context, modelID string) ([]*domain.EvidencePack, error) {
	return s.deps.Packs.List(ctx, modelID)
}

// OpenArtifact opens one file of a recorded pack.
func (s *EvidencePackService) OpenArtifact(ctx context.Context, packID, name string) (io.ReadCloser, error) {
	if _, err := s.deps.Packs.Get(ctx, packID); err != nil {
		return nil, err
	}
	rc, err := s.deps.Artifacts.Open(ctx, packID, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}
	return rc, nil
}
