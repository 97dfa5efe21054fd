package domain

// Append-only record collections. Evaluation kinds use EvaluationKind.Collection.
const (
	CollectionLineage       = "lineage"
	CollectionEvidencePacks = "evidence_packs"
	CollectionAuditLog      = "audit_log"
)

// Versioned collections: the latest record per key is the current value and
// a tombstone record deletes the key.
const (
	CollectionModels     = "models"
	CollectionControls   = "controls"
	CollectionPhilosophy = "governance_philosophy"
)
