package services

import (
	"encoding/json"
	"testing"
)

func raws(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out
}

func TestMergeAttributesIncomingWinsAndKeepsPosition(t *testing.T) {
	existing := raws(
		`{"attributeName":"status","value":"OPEN"}`,
		`{"name":"owner","value":"ana"}`,
	)
	incoming := raws(
		`{"attributeName":"priority","value":"HIGH"}`,
		`{"attributeName":"status","value":"CLOSED"}`,
	)

	merged := MergeAttributes(existing, incoming)
	if len(merged) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(merged))
	}
	if string(merged[0]) != `{"attributeName":"status","value":"CLOSED"}` {
		t.Fatalf("expected status replaced in place, got %s", merged[0])
	}
	if string(merged[1]) != `{"name":"owner","value":"ana"}` {
		t.Fatalf("expected owner kept, got %s", merged[1])
	}
	if string(merged[2]) != `{"attributeName":"priority","value":"HIGH"}` {
		t.Fatalf("expected priority appended, got %s", merged[2])
	}
}

func TestMergeAttributesReplayIsStable(t *testing.T) {
	incoming := raws(`{"attributeName":"status","value":"CLOSED"}`, `{"note":"unnamed"}`)
	once := MergeAttributes(nil, incoming)
	twice := MergeAttributes(once, incoming)

	first, _ := json.Marshal(once)
	second, _ := json.Marshal(twice)
	if string(first) != string(second) {
		t.Fatalf("replay changed the payload: %s vs %s", first, second)
	}
}

func TestAttributeNamePrefersAttributeName(t *testing.T) {
	name, ok := AttributeName(json.RawMessage(`{"attributeName":"a","name":"b"}`))
	if !ok || name != "a" {
		t.Fatalf("expected attributeName, got %q %v", name, ok)
	}
	if _, ok := AttributeName(json.RawMessage(`[1,2]`)); ok {
		t.Fatal("expected arrays to have no name")
	}
}

func TestMergeAttributesKeysBothShapesByAttributeName(t *testing.T) {
	existing := raws(`{"attributeName":"status","name":"Status","value":"OPEN"}`)
	incoming := raws(`{"attributeName":"status","value":"CLOSED"}`)

	merged := MergeAttributes(existing, incoming)
	if len(merged) != 1 || string(merged[0]) != `{"attributeName":"status","value":"CLOSED"}` {
		t.Fatalf("expected a single replaced status, got %s", merged)
	}
}
