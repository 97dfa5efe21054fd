package dto

import (
	"model-governance-service/internal/core/domain"
)

type CreateControlRequest struct {
	ControlID                  string   `json:"control_id" binding:"required,max=64"`
	FrameworkReference         string   `json:"framework_reference" binding:"required"`
	RegulatoryFocus            string   `json:"regulatory_focus"`
	Category                   string   `json:"category" binding:"required"`
	Accountability             string   `json:"accountability"`
	Description                string   `json:"description" binding:"required"`
	MandatoryForProd           bool     `json:"mandatory_for_prod"`
	AppliesToUseCaseCategories []string `json:"applies_to_use_case_categories"`
}

func (r CreateControlRequest) ToDomain() *domain.ControlCatalogEntry {
	return &domain.ControlCatalogEntry{
		ControlID:                  r.ControlID,
		FrameworkReference:         r.FrameworkReference,
		RegulatoryFocus:            r.RegulatoryFocus,
		Category:                   domain.ControlCategory(r.Category),
		Accountability:             r.Accountability,
		Description:                r.Description,
		MandatoryForProd:           r.MandatoryForProd,
		AppliesToUseCaseCategories: toUseCases(r.AppliesToUseCaseCategories),
	}
}

type UpdateControlRequest struct {
	FrameworkReference         *string   `json:"framework_reference"`
	RegulatoryFocus            *string   `json:"regulatory_focus"`
	Category                   *string   `json:"category"`
	Accountability             *string   `json:"accountability"`
	Description                *string   `json:"description"`
	MandatoryForProd           *bool     `json:"mandatory_for_prod"`
	AppliesToUseCaseCategories *[]string `json:"applies_to_use_case_categories"`
}

func (r UpdateControlRequest) ToControlUpdate() domain.ControlUpdate {
	update := domain.ControlUpdate{
		FrameworkReference: r.FrameworkReference,
		RegulatoryFocus:    r.RegulatoryFocus,
		Category:           convertPtr[domain.ControlCategory](r.Category),
		Accountability:     r.Accountability,
		Description:        r.Description,
		MandatoryForProd:   r.MandatoryForProd,
	}
	if r.AppliesToUseCaseCategories != nil {
		cats := toUseCases(*r.AppliesToUseCaseCategories)
		update.AppliesToUseCaseCategories = &cats
	}
	return update
}

func toUseCases(in []string) []domain.UseCaseCategory {
	if in == nil {
		return nil
	}
	out := make([]domain.UseCaseCategory, 0, len(in))
	for _, s := range in {
		out = append(out, domain.UseCaseCategory(s))
	}
	return out
}
