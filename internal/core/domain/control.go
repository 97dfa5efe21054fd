package domain

import (
	"fmt"
	"slices"
	"strings"
)

// ============================================================================
// Control Catalog
// ============================================================================

type ControlCategory string

const (
	CategoryExplainability ControlCategory = "Explainability"
	CategoryDataBias       ControlCategory = "Data&Bias"
	CategoryCompliance     ControlCategory = "Compliance"
	CategoryRisk           ControlCategory = "Risk"
	CategoryOperations     ControlCategory = "Operations"
)

func (c ControlCategory) IsValid() bool {
	switch c {
	case CategoryExplainability, CategoryDataBias, CategoryCompliance, CategoryRisk, CategoryOperations:
		return true
	}
	return false
}

const DefaultAccountability = "Chief Compliance Officer"

type ControlCatalogEntry struct {
	ControlID                  string            `json:"control_id" yaml:"control_id"`
	FrameworkReference         string            `json:"framework_reference" yaml:"framework_reference"`
	RegulatoryFocus            string            `json:"regulatory_focus" yaml:"regulatory_focus"`
	Category                   ControlCategory   `json:"category" yaml:"category"`
	Accountability             string            `json:"accountability" yaml:"accountability"`
	Description                string            `json:"description" yaml:"description"`
	MandatoryForProd           bool              `json:"mandatory_for_prod" yaml:"mandatory_for_prod"`
	AppliesToUseCaseCategories []UseCaseCategory `json:"applies_to_use_case_categories" yaml:"applies_to_use_case_categories"`
}

// AppliesTo reports whether the control covers the use case. An empty list
// covers every use case.
func (c *ControlCatalogEntry) AppliesTo(u UseCaseCategory) bool {
	return len(c.AppliesToUseCaseCategories) == 0 || slices.Contains(c.AppliesToUseCaseCategories, u)
}

func (c *ControlCatalogEntry) Normalize() {
	if strings.TrimSpace(c.Accountability) == "" {
		c.Accountability = DefaultAccountability
	}
	if c.AppliesToUseCaseCategories == nil {
		c.AppliesToUseCaseCategories = []UseCaseCategory{}
	}
}

func (c *ControlCatalogEntry) Validate() error {
	if strings.TrimSpace(c.ControlID) == "" {
		return Invalid("control_id", "is required")
	}
	if strings.TrimSpace(c.FrameworkReference) == "" {
		return Invalid("framework_reference", "is required")
	}
	if strings.TrimSpace(c.RegulatoryFocus) == "" {
		return Invalid("regulatory_focus", "is required")
	}
	if !c.Category.IsValid() {
		return Invalid("category", fmt.Sprintf("unknown value %q", c.Category))
	}
	if strings.TrimSpace(c.Description) == "" {
		return Invalid("description", "is required")
	}
	for _, u := range c.AppliesToUseCaseCategories {
		if !u.IsValid() {
			return Invalid("applies_to_use_case_categories", fmt.Sprintf("unknown use case %q", u))
		}
	}
	return nil
}

// ControlUpdate is a partial catalog update. Nil fields are left unchanged.
type ControlUpdate struct {
	FrameworkReference         *string
	RegulatoryFocus            *string
	Category                   *ControlCategory
	Accountability             *string
	Description                *string
	MandatoryForProd           *bool
	AppliesToUseCaseCategories *[]UseCaseCategory
}

func (u ControlUpdate) IsEmpty() bool {
	return u.FrameworkReference == nil && u.RegulatoryFocus == nil && u.Category == nil &&
		u.Accountability == nil && u.Description == nil && u.MandatoryForProd == nil &&
		u.AppliesToUseCaseCategories == nil
}

// Apply returns a copy of c with the update applied.
func (u ControlUpdate) Apply(c ControlCatalogEntry) ControlCatalogEntry {
	if u.FrameworkReference != nil {
		c.FrameworkReference = *u.FrameworkReference
	}
	if u.RegulatoryFocus != nil {
		c.RegulatoryFocus = *u.RegulatoryFocus
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Accountability != nil {
		c.Accountability = *u.Accountability
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.MandatoryForProd != nil {
		c.MandatoryForProd = *u.MandatoryForProd
	}
	if u.AppliesToUseCaseCategories != nil {
		c.AppliesToUseCaseCategories = slices.Clone(*u.AppliesToUseCaseCategories)
	}
	return c
}
