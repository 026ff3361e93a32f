package services

import (
	"encoding/json"
	"sort"

	"snapstream/contexts/change-capture/outbox-relay/domain/entities"
)

const (
	singleAttributeKey    = "attributeName"
	compositeAttributeKey = "attributes"
	nestedNameKey         = "name"
)

// MergeResult is the consolidated attribute list of one entity group.
// Skipped holds ids of rows whose payload could not be read as an attribute change.
type MergeResult struct {
	Attributes []json.RawMessage
	Skipped    []int64
}

// MergeAttributes applies rows in ascending CreatedAt (then ID) order so the
// last writer of an attribute name wins. A payload carrying attributeName
// contributes itself under that name; otherwise each element of its
// attributes array contributes under its attributeName, or its name when it
// has none. The output keeps the order in which names were first seen.
func MergeAttributes(rows []entities.OutboxRow) MergeResult {
	ordered := append([]entities.OutboxRow(nil), rows...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	set := newAttributeSet()
	var skipped []int64
	for _, row := range ordered {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(row.Payload, &fields); err != nil || fields == nil {
			skipped = append(skipped, row.ID)
			continue
		}

		if name, ok := stringField(fields, singleAttributeKey); ok {
			set.put(name, row.Payload)
			continue
		}

		rawList, ok := fields[compositeAttributeKey]
		if !ok {
			continue
		}
		var nested []json.RawMessage
		if err := json.Unmarshal(rawList, &nested); err != nil {
			skipped = append(skipped, row.ID)
			continue
		}
		for _, item := range nested {
			var attr map[string]json.RawMessage
			if err := json.Unmarshal(item, &attr); err != nil {
				continue
			}
			if name, ok := nestedAttributeName(attr); ok {
				set.put(name, item)
			}
		}
	}

	return MergeResult{
		Attributes: set.list(),
		Skipped:    skipped,
	}
}

type attributeSet struct {
	order  []string
	values map[string]json.RawMessage
}

func newAttributeSet() *attributeSet {
	return &attributeSet{values: make(map[string]json.RawMessage)}
}

func (s *attributeSet) put(name string, raw json.RawMessage) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = append(json.RawMessage(nil), raw...)
}

func (s *attributeSet) list() []json.RawMessage {
	items := make([]json.RawMessage, 0, len(s.order))
	for _, name := range s.order {
		items = append(items, s.values[name])
	}
	return items
}

// nestedAttributeName keys a nested element the way the read model keys it.
func nestedAttributeName(fields map[string]json.RawMessage) (string, bool) {
	if name, ok := stringField(fields, singleAttributeKey); ok {
		return name, true
	}
	return stringField(fields, nestedNameKey)
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return "", false
	}
	return value, true
}
