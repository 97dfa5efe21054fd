package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Evidence Pack Sections
// ============================================================================

type PackSection string

const (
	SectionModel          PackSection = "model"
	SectionLineage        PackSection = "lineage"
	SectionControls       PackSection = "controls"
	SectionExplainability PackSection = "explainability"
	SectionBias           PackSection = "bias"
	SectionDrift          PackSection = "drift"
	SectionRAG            PackSection = "rag"
	SectionRisk           PackSection = "risk"
	SectionPhilosophy     PackSection = "philosophy"
	SectionAuditSummary   PackSection = "audit_summary"
)

// PackSections is the fixed render order of pack documents.
var PackSections = []PackSection{
	SectionModel, SectionLineage, SectionControls, SectionExplainability, SectionBias,
	SectionDrift, SectionRAG, SectionRisk, SectionPhilosophy, SectionAuditSummary,
}

// FileName is the document name of the section inside the pack.
func (s PackSection) FileName() string { return string(s) + ".md" }

// Artifact names written alongside section documents.
const (
	ManifestFileName = "manifest.yaml"
	ArchiveFileName  = "evidence_pack.zip"
)

// ============================================================================
// Evidence Pack
// ============================================================================

// EvidencePack is the metadata of a generated pack. Created once, never updated.
type EvidencePack struct {
	ID                   string        `json:"evidence_pack_id"`
	ModelID              string        `json:"model_id"`
	CreatedAt            time.Time     `json:"created_at"`
	CreatedBy            string        `json:"created_by"`
	JurisdictionsCovered []string      `json:"jurisdictions_covered"`
	IncludedSections     []PackSection `json:"included_sections"`
	Location             string        `json:"location"`
	ZipPath              string        `json:"zip_path"`
	AsOfSequence         int64         `json:"as_of_sequence"`
}

// NewEvidencePackID returns an id of the form pack_<12 hex chars>.
func NewEvidencePackID() string {
	return "pack_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// PackManifest is written as manifest.yaml inside every pack.
type PackManifest struct {
	EvidencePackID       string          `yaml:"evidence_pack_id"`
	ModelID              string          `yaml:"model_id"`
	CreatedAt            string          `yaml:"created_at"`
	CreatedBy            string          `yaml:"created_by"`
	AsOfSequence         int64           `yaml:"as_of_sequence"`
	JurisdictionsCovered []string        `yaml:"jurisdictions_covered"`
	IncludedSections     []PackSection   `yaml:"included_sections"`
	Documents            []ManifestEntry `yaml:"documents"`
}

type ManifestEntry struct {
	Section PackSection `yaml:"section"`
	File    string      `yaml:"file"`
	SHA256  string      `yaml:"sha256"`
	Bytes   int         `yaml:"bytes"`
}
