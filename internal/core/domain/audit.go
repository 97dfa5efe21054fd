package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// ============================================================================
// Audit Actions and Entity Types
// ============================================================================

const (
	ActionCreateModel             = "create_model"
	ActionUpdateModel             = "update_model"
	ActionAddLineage              = "add_lineage"
	ActionAddBiasTest             = "add_bias_test"
	ActionAddDrift                = "add_drift"
	ActionAddExplainability       = "add_explainability"
	ActionUpdateControlEvaluation = "update_control_evaluation"
	ActionAddRAGEvaluation        = "add_rag_evaluation"
	ActionAddRiskAssessment       = "add_risk_assessment"
	ActionCreateControl           = "create_control"
	ActionUpdateControl           = "update_control"
	ActionDeleteControl           = "delete_control"
	ActionCreatePhilosophy        = "create_philosophy"
	ActionUpdatePhilosophy        = "update_philosophy"
	ActionDeletePhilosophy        = "delete_philosophy"
	ActionGenerateEvidencePack    = "generate_evidence_pack"
)

const (
	EntityModel        = "model"
	EntityLineage      = "lineage"
	EntityControl      = "control"
	EntityPhilosophy   = "philosophy"
	EntityEvidencePack = "evidence_pack"
)

// SystemActor is recorded when a mutation carries no actor.
const SystemActor = "system"

// ============================================================================
// Audit Log Entry
// ============================================================================

// AuditLogEntry is one immutable audit record. Entries form a hash chain:
// each Hash covers the entry's fields and the previous entry's Hash.
type AuditLogEntry struct {
	Index      int64           `json:"index"`
	Timestamp  time.Time       `json:"timestamp"`
	UserID     string          `json:"user_id"`
	ActionType string          `json:"action_type"`
	ModelID    string          `json:"model_id,omitempty"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value,omitempty"`
	PrevHash   string          `json:"prev_hash"`
	Hash       string          `json:"hash"`
}

// ComputeHash returns the sha256 of the entry marshaled with an empty Hash.
func (e AuditLogEntry) ComputeHash() (string, error) {
	e.Hash = ""
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// AuditFilter narrows audit queries. Empty fields match everything.
type AuditFilter struct {
	ModelID    string
	EntityType string
	ActionType string
	Limit      int
}

const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 1000
)

// Matches reports whether e passes every non-empty filter field.
func (f AuditFilter) Matches(e *AuditLogEntry) bool {
	if f.ModelID != "" && e.ModelID != f.ModelID {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.ActionType != "" && e.ActionType != f.ActionType {
		return false
	}
	return true
}

// ChainVerification is the result of walking the audit hash chain.
type ChainVerification struct {
	Valid    bool   `json:"valid"`
	Entries  int    `json:"entries"`
	BrokenAt *int64 `json:"broken_at,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
