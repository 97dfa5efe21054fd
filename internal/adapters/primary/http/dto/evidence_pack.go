package dto

import (
	"time"

	"model-governance-service/internal/core/domain"
)

type ComputeRiskRequest struct {
	MitigationPlan string `json:"mitigation_plan"`
}

type EvidencePackResponse struct {
	ID                   string   `json:"evidence_pack_id"`
	ModelID              string   `json:"model_id"`
	CreatedAt            string   `json:"created_at"`
	CreatedBy            string   `json:"created_by"`
	JurisdictionsCovered []string `json:"jurisdictions_covered"`
	IncludedSections     []string `json:"included_sections"`
	Location             string   `json:"location"`
	ZipPath              string   `json:"zip_path"`
	AsOfSequence         int64    `json:"as_of_sequence"`
	DownloadURL          string   `json:"download_url"`
}

// ToEvidencePackResponse renders pack metadata. basePath is the API prefix
// the download link is built from.
func ToEvidencePackResponse(p *domain.EvidencePack, basePath string) EvidencePackResponse {
	sections := make([]string, 0, len(p.IncludedSections))
	for _, s := range p.IncludedSections {
		sections = append(sections, string(s))
	}
	jurisdictions := p.JurisdictionsCovered
	if jurisdictions == nil {
		jurisdictions = []string{}
	}
	return EvidencePackResponse{
		ID:                   p.ID,
		ModelID:              p.ModelID,
		CreatedAt:            p.CreatedAt.UTC().Format(time.RFC3339),
		CreatedBy:            p.CreatedBy,
		JurisdictionsCovered: jurisdictions,
		IncludedSections:     sections,
		Location:             p.Location,
		ZipPath:              p.ZipPath,
		AsOfSequence:         p.AsOfSequence,
		DownloadURL:          basePath + "/evidence-packs/" + p.ID + "/download",
	}
}
