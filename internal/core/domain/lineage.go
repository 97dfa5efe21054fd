package domain

import (
	"strings"
	"time"
)

// LineageEntry is an append-only snapshot of where a model came from.
type LineageEntry struct {
	ModelID             string         `json:"model_id"`
	EventType           string         `json:"event_type"`
	DataSources         []string       `json:"data_sources"`
	ExternalDataSources []string       `json:"external_data_sources"`
	TrainingPipeline    string         `json:"training_pipeline,omitempty"`
	FeatureStoreRefs    []string       `json:"feature_store_refs"`
	Artifacts           map[string]any `json:"artifacts"`
	Deployment          map[string]any `json:"deployment"`
	Timestamp           time.Time      `json:"timestamp"`
}

const DefaultLineageEventType = "lineage_snapshot"

// Bind attaches the owning model and fills defaults before the entry is appended.
func (l *LineageEntry) Bind(modelID string, now time.Time) {
	l.ModelID = modelID
	stampTime(&l.Timestamp, now.UTC())
	if strings.TrimSpace(l.EventType) == "" {
		l.EventType = DefaultLineageEventType
	}
	if l.DataSources == nil {
		l.DataSources = []string{}
	}
	if l.ExternalDataSources == nil {
		l.ExternalDataSources = []string{}
	}
	if l.FeatureStoreRefs == nil {
		l.FeatureStoreRefs = []string{}
	}
	if l.Artifacts == nil {
		l.Artifacts = map[string]any{}
	}
	if l.Deployment == nil {
		l.Deployment = map[string]any{}
	}
}

// StoredLineage pairs a lineage entry with its append sequence.
type StoredLineage struct {
	Seq   int64
	Entry *LineageEntry
}
