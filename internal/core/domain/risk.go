package domain

// ============================================================================
// Risk Score
// ============================================================================

// Component weights for the composite score.
const (
	WeightBias           = 0.40
	WeightControls       = 0.25
	WeightExplainability = 0.20
	WeightDrift          = 0.10
	WeightOperational    = 0.05
)

// Band lower bounds.
const (
	CriticalThreshold = 80.0
	HighThreshold     = 60.0
	MediumThreshold   = 30.0
)

type RiskComponentName string

const (
	ComponentBias           RiskComponentName = "bias"
	ComponentControls       RiskComponentName = "controls"
	ComponentExplainability RiskComponentName = "explainability"
	ComponentDrift          RiskComponentName = "drift"
	ComponentOperational    RiskComponentName = "operational"
)

// RiskComponent is one weighted sub-score in [0,100].
type RiskComponent struct {
	Name         RiskComponentName `json:"name"`
	Score        float64           `json:"score"`
	Weight       float64           `json:"weight"`
	Contribution float64           `json:"contribution"`
	Material     bool              `json:"material"`
	Detail       string            `json:"detail"`
}

// RiskScore is the composite score for a model. Components keep the fixed
// order bias, controls, explainability, drift, operational.
type RiskScore struct {
	ModelID        string          `json:"model_id"`
	Score          float64         `json:"risk_score"`
	Level          RiskLevel       `json:"risk_level"`
	Drivers        []string        `json:"primary_risk_drivers"`
	Components     []RiskComponent `json:"components"`
	BusinessImpact string          `json:"business_impact_summary"`
	AsOfSequence   int64           `json:"as_of_sequence"`
}

// LevelFor maps a score in [0,100] to its band.
func LevelFor(score float64) RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return RiskCritical
	case score >= HighThreshold:
		return RiskHigh
	case score >= MediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}
