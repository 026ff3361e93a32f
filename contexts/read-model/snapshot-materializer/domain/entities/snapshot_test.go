package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshotRecordApplyBumpsVersion(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record := NewSnapshotRecord("T1", []byte(`{"a":1}`), created)
	if record.Version != 1 || !record.UpdatedAt.Equal(created) {
		t.Fatalf("unexpected new record: %+v", record)
	}

	next := record.Apply([]byte(`{"a":2}`), created.Add(time.Minute))
	if next.Version != 2 || string(next.Payload) != `{"a":2}` {
		t.Fatalf("unexpected applied record: %+v", next)
	}
	if !next.CreatedAt.Equal(created) || !next.UpdatedAt.Equal(created.Add(time.Minute)) {
		t.Fatalf("unexpected timestamps: %+v", next)
	}
	if record.Version != 1 || string(record.Payload) != `{"a":1}` {
		t.Fatal("apply mutated the original record")
	}
}

func TestSnapshotRecordUpdatedAtNeverMovesBack(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record := NewSnapshotRecord("T1", []byte(`{}`), at)
	next := record.Apply([]byte(`{}`), at.Add(-time.Hour))
	if !next.UpdatedAt.Equal(at) {
		t.Fatalf("expected updated_at kept at %v, got %v", at, next.UpdatedAt)
	}
	if next.Version != 2 {
		t.Fatalf("expected version bump even with skewed clock, got %d", next.Version)
	}
}

func TestParseAttributeTypeDefaultsToString(t *testing.T) {
	cases := map[string]AttributeType{
		"numeric": AttributeNumeric,
		"Date":    AttributeDate,
		"BOOLEAN": AttributeBoolean,
		"entity":  AttributeEntity,
		"text":    AttributeText,
		"string":  AttributeString,
		"":        AttributeString,
		"decimal": AttributeString,
	}
	for raw, want := range cases {
		if got := ParseAttributeType(raw); got != want {
			t.Fatalf("ParseAttributeType(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestDecodeAttributeSkipsMismatchedValues(t *testing.T) {
	attr, ok := DecodeAttribute(json.RawMessage(`{"name":"estimate","type":"numeric","values":[3.5,"three",7]}`))
	if !ok {
		t.Fatal("expected attribute decoded")
	}
	if attr.Type != AttributeNumeric || len(attr.Values) != 2 {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
	if attr.Values[0].Numeric.String() != "3.5" || attr.Values[1].Numeric.String() != "7" {
		t.Fatalf("unexpected numeric values: %+v", attr.Values)
	}
}

func TestDecodeAttributeTypedValues(t *testing.T) {
	date, _ := DecodeAttribute(json.RawMessage(`{"name":"due","type":"DATE","values":["2026-03-01T10:00:00+02:00","tomorrow"]}`))
	if len(date.Values) != 1 || !date.Values[0].Date.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date values: %+v", date.Values)
	}

	flag, _ := DecodeAttribute(json.RawMessage(`{"name":"blocked","type":"BOOLEAN","values":[true,"yes"]}`))
	if len(flag.Values) != 1 || !flag.Values[0].Boolean {
		t.Fatalf("unexpected boolean values: %+v", flag.Values)
	}

	ref, _ := DecodeAttribute(json.RawMessage(`{"name":"assignee","type":"ENTITY","values":["user-7",7]}`))
	if len(ref.Values) != 1 || ref.Values[0].EntityRef != "user-7" {
		t.Fatalf("unexpected entity values: %+v", ref.Values)
	}

	text, _ := DecodeAttribute(json.RawMessage(`{"attributeName":"status","type":"unknown","value":42}`))
	if text.Type != AttributeString || len(text.Values) != 1 || text.Values[0].String != "42" {
		t.Fatalf("unexpected string fallback: %+v", text)
	}
}

func TestDecodeAttributeRequiresName(t *testing.T) {
	if _, ok := DecodeAttribute(json.RawMessage(`{"type":"TEXT","value":"x"}`)); ok {
		t.Fatal("expected unnamed attribute rejected")
	}
	if _, ok := DecodeAttribute(json.RawMessage(`"plain"`)); ok {
		t.Fatal("expected non-object rejected")
	}
}
