package recordstore

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"model-governance-service/internal/core/domain"
	ports "model-governance-service/internal/core/ports/output"
)

//go:embed seed/controls.yaml
var defaultControlsYAML []byte

// DefaultControls returns the built-in control catalog.
func DefaultControls() ([]*domain.ControlCatalogEntry, error) {
	var controls []*domain.ControlCatalogEntry
	if err := yaml.Unmarshal(defaultControlsYAML, &controls); err != nil {
		return nil, fmt.Errorf("parse default control catalog: %w", err)
	}
	for _, c := range controls {
		c.Normalize()
	}
	return controls, nil
}

// controlRepo overlays catalog records on the built-in defaults. A catalog
// record replaces the default with the same id and a tombstone removes it.
type controlRepo struct {
	log      ports.RecordLog
	defaults []*domain.ControlCatalogEntry
}

func NewControlCatalogRepository(log ports.RecordLog) (ports.ControlCatalogRepository, error) {
	defaults, err := DefaultControls()
	if err != nil {
		return nil, err
	}
	return &controlRepo{log: log, defaults: defaults}, nil
}

func (r *controlRepo) List(ctx context.Context, asOf int64) ([]*domain.ControlCatalogEntry, error) {
	recs, err := r.log.List(ctx, domain.CollectionControls, "", asOf)
	if err != nil {
		return nil, fmt.Errorf("list controls: %w", err)
	}

	catalog := make(map[string]*domain.ControlCatalogEntry, len(r.defaults))
	for _, c := range r.defaults {
		cp := *c
		catalog[c.ControlID] = &cp
	}
	for _, rec := range recs {
		if isTombstone(rec) {
			delete(catalog, rec.Key)
			continue
		}
		c, err := decode[domain.ControlCatalogEntry](rec)
		if err != nil {
			return nil, err
		}
		c.Normalize()
		catalog[rec.Key] = c
	}

	out := make([]*domain.ControlCatalogEntry, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ControlID < out[j].ControlID })
	return out, nil
}

func (r *controlRepo) Get(ctx context.Context, controlID string, asOf int64) (*domain.ControlCatalogEntry, error) {
	recs, err := r.log.List(ctx, domain.CollectionControls, controlID, asOf)
	if err != nil {
		return nil, fmt.Errorf("get control: %w", err)
	}
	if len(recs) > 0 {
		rec, ok := last(recs)
		if !ok {
			return nil, domain.ErrControlNotFound
		}
		c, err := decode[domain.ControlCatalogEntry](rec)
		if err != nil {
			return nil, err
		}
		c.Normalize()
		return c, nil
	}
	for _, c := range r.defaults {
		if c.ControlID == controlID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrControlNotFound
}
