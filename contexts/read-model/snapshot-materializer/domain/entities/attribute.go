package entities

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type AttributeType string

const (
	AttributeString  AttributeType = "STRING"
	AttributeNumeric AttributeType = "NUMERIC"
	AttributeDate    AttributeType = "DATE"
	AttributeBoolean AttributeType = "BOOLEAN"
	// AttributeEntity is a reference to another entity, e.g. a dropdown choice.
	AttributeEntity AttributeType = "ENTITY"
	AttributeText   AttributeType = "TEXT"
)

// ParseAttributeType is case-insensitive. Unknown or empty tags are STRING.
func ParseAttributeType(raw string) AttributeType {
	switch AttributeType(strings.ToUpper(strings.TrimSpace(raw))) {
	case AttributeNumeric:
		return AttributeNumeric
	case AttributeDate:
		return AttributeDate
	case AttributeBoolean:
		return AttributeBoolean
	case AttributeEntity:
		return AttributeEntity
	case AttributeText:
		return AttributeText
	default:
		return AttributeString
	}
}

// AttributeValue holds one decoded value; only the field matching Type is set.
type AttributeValue struct {
	Type      AttributeType
	String    string
	Numeric   json.Number
	Date      time.Time
	Boolean   bool
	EntityRef string
	Text      string
}

// Interface returns the value as a plain Go value for rendering.
func (v AttributeValue) Interface() any {
	switch v.Type {
	case AttributeNumeric:
		return v.Numeric
	case AttributeDate:
		return v.Date
	case AttributeBoolean:
		return v.Boolean
	case AttributeEntity:
		return v.EntityRef
	case AttributeText:
		return v.Text
	default:
		return v.String
	}
}

// Attribute is the typed view of one attribute object in a snapshot.
type Attribute struct {
	Name   string
	Type   AttributeType
	Values []AttributeValue
}

type attributeDocument struct {
	Name          string            `json:"name"`
	AttributeName string            `json:"attributeName"`
	Type          string            `json:"type"`
	Values        []json.RawMessage `json:"values"`
	Value         json.RawMessage   `json:"value"`
	Val           json.RawMessage   `json:"val"`
}

// DecodeAttribute reads an attribute object. Values come from the values
// array, or from a single value/val field when there is no array. Values that
// do not fit the declared type are skipped. ok is false when raw is not an
// object or carries no name.
func DecodeAttribute(raw json.RawMessage) (Attribute, bool) {
	var doc attributeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Attribute{}, false
	}
	name := doc.AttributeName
	if name == "" {
		name = doc.Name
	}
	if name == "" {
		return Attribute{}, false
	}

	attr := Attribute{Name: name, Type: ParseAttributeType(doc.Type)}
	rawValues := doc.Values
	if rawValues == nil {
		switch {
		case len(doc.Value) > 0:
			rawValues = []json.RawMessage{doc.Value}
		case len(doc.Val) > 0:
			rawValues = []json.RawMessage{doc.Val}
		}
	}
	for _, rawValue := range rawValues {
		if value, ok := decodeValue(rawValue, attr.Type); ok {
			attr.Values = append(attr.Values, value)
		}
	}
	return attr, true
}

func decodeValue(raw json.RawMessage, typ AttributeType) (AttributeValue, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return AttributeValue{}, false
	}
	value := AttributeValue{Type: typ}

	switch typ {
	case AttributeNumeric:
		if !isJSONNumber(raw) {
			return AttributeValue{}, false
		}
		value.Numeric = json.Number(raw)
	case AttributeDate:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return AttributeValue{}, false
		}
		at, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return AttributeValue{}, false
		}
		value.Date = at
	case AttributeBoolean:
		if err := json.Unmarshal(raw, &value.Boolean); err != nil {
			return AttributeValue{}, false
		}
	case AttributeEntity:
		if err := json.Unmarshal(raw, &value.EntityRef); err != nil {
			return AttributeValue{}, false
		}
	case AttributeText:
		value.Text = asText(raw)
	default:
		value.String = asText(raw)
	}
	return value, true
}

// asText renders a JSON string as its content and anything else as its
// JSON text.
func asText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

func isJSONNumber(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	var n json.Number
	return json.Unmarshal(raw, &n) == nil
}
