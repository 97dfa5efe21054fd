package services

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ShallowDiff compares the top-level JSON fields of two values and returns
// objects holding only the changed fields on each side. Both results are
// nil when nothing changed.
func ShallowDiff(oldValue, newValue any) (json.RawMessage, json.RawMessage, error) {
	oldFields, err := topLevelFields(oldValue)
	if err != nil {
		return nil, nil, err
	}
	newFields, err := topLevelFields(newValue)
	if err != nil {
		return nil, nil, err
	}

	oldChanged := map[string]json.RawMessage{}
	newChanged := map[string]json.RawMessage{}
	for k, ov := range oldFields {
		nv, ok := newFields[k]
		if !ok {
			oldChanged[k] = ov
			continue
		}
		if !jsonEqual(ov, nv) {
			oldChanged[k] = ov
			newChanged[k] = nv
		}
	}
	for k, nv := range newFields {
		if _, ok := oldFields[k]; !ok {
			newChanged[k] = nv
		}
	}
	if len(oldChanged) == 0 && len(newChanged) == 0 {
		return nil, nil, nil
	}

	// map keys marshal sorted, so the diff is deterministic
	oldRaw, err := json.Marshal(oldChanged)
	if err != nil {
		return nil, nil, err
	}
	newRaw, err := json.Marshal(newChanged)
	if err != nil {
		return nil, nil, err
	}
	return oldRaw, newRaw, nil
}

func topLevelFields(v any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode diff value: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("diff value is not an object: %w", err)
	}
	return fields, nil
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
