package services

import (
	"encoding/json"
)

// MergeAttributes folds incoming attribute objects over existing ones. An
// incoming attribute replaces the existing one with the same name and keeps
// its position; new names are appended in the order they arrive. Objects
// without a name are keyed by their content so a replay does not duplicate them.
func MergeAttributes(existing, incoming []json.RawMessage) []json.RawMessage {
	order := make([]string, 0, len(existing)+len(incoming))
	values := make(map[string]json.RawMessage, len(existing)+len(incoming))

	put := func(raw json.RawMessage) {
		key := attributeKey(raw)
		if _, ok := values[key]; !ok {
			order = append(order, key)
		}
		values[key] = append(json.RawMessage(nil), raw...)
	}
	for _, raw := range existing {
		put(raw)
	}
	for _, raw := range incoming {
		put(raw)
	}

	merged := make([]json.RawMessage, 0, len(order))
	for _, key := range order {
		merged = append(merged, values[key])
	}
	return merged
}

// AttributeName returns attributeName, falling back to name.
func AttributeName(raw json.RawMessage) (string, bool) {
	var doc struct {
		Name          string `json:"name"`
		AttributeName string `json:"attributeName"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", false
	}
	if doc.AttributeName != "" {
		return doc.AttributeName, true
	}
	if doc.Name != "" {
		return doc.Name, true
	}
	return "", false
}

func attributeKey(raw json.RawMessage) string {
	if name, ok := AttributeName(raw); ok {
		return "name:" + name
	}
	return "raw:" + string(raw)
}
