// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"strconv"
)

// Repository holds the metadata of a single repository needed to draw its card.
// It is the core domain entity of this application.
type Repository struct {
	Owner       string
	Name        string
	Description *string
	AvatarURL   string
	Attributes  Attributes
}

// AttributeKind tags the scalar type carried by an Attribute.
type AttributeKind int

const (
	KindNull AttributeKind = iota
	KindString
	KindNumber
	KindBool
)

// Attribute is a single scalar value of the open-ended repository metadata.
type Attribute struct {
	Kind   AttributeKind
	String string
	// Number keeps the literal exactly as the metadata source sent it.
	Number json.Number
	Bool   bool
}

// StringAttribute returns an Attribute holding s.
func StringAttribute(s string) Attribute {
	return Attribute{Kind: KindString, String: s}
}

// NumberAttribute returns an Attribute holding the decimal literal n.
func NumberAttribute(n json.Number) Attribute {
	return Attribute{Kind: KindNumber, Number: n}
}

// IntAttribute is a convenience wrapper around NumberAttribute for integer counts.
func IntAttribute(n int) Attribute {
	return NumberAttribute(json.Number(strconv.Itoa(n)))
}

// BoolAttribute returns an Attribute holding b.
func BoolAttribute(b bool) Attribute {
	return Attribute{Kind: KindBool, Bool: b}
}

// NullAttribute returns an Attribute for a value that is present but null.
func NullAttribute() Attribute {
	return Attribute{Kind: KindNull}
}

// Text coerces the attribute to the text displayed on the card.
// Null values render as the empty string.
func (a Attribute) Text() string {
	switch a.Kind {
	case KindString:
		return a.String
	case KindNumber:
		return a.Number.String()
	case KindBool:
		if a.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Attributes maps an attribute name to its scalar value.
type Attributes map[string]Attribute

// Lookup returns the attribute called name and whether it exists.
func (a Attributes) Lookup(name string) (Attribute, bool) {
	if a == nil {
		return Attribute{}, false
	}
	attr, ok := a[name]
	return attr, ok
}

// AttributesFromJSON collects the top-level scalar fields of a JSON object.
// Nested objects and arrays are not scalars and are left out.
func AttributesFromJSON(raw map[string]any) Attributes {
	attrs := make(Attributes, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			attrs[name] = NullAttribute()
		case string:
			attrs[name] = StringAttribute(v)
		case json.Number:
			attrs[name] = NumberAttribute(v)
		case bool:
			attrs[name] = BoolAttribute(v)
		case float64:
			attrs[name] = NumberAttribute(json.Number(strconv.FormatFloat(v, 'f', -1, 64)))
		}
	}
	return attrs
}
