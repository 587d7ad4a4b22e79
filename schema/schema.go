// Package schema declares the shape of every inventory collection and the
// references between them.
package schema

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownCollection is returned when a collection name is not registered.
var ErrUnknownCollection = errors.New("unknown collection")

// IDField is the document key holding a record's identifier.
const IDField = "_id"

// Collection names.
const (
	Users      = "users"
	Admins     = "admins"
	Categories = "categories"
	Items      = "items"
	Orders     = "orders"
)

// FieldType is the canonical value type of a field.
type FieldType int

const (
	// TypeInteger values are int64. References are integers.
	TypeInteger FieldType = iota + 1
	// TypeDecimal values are decimal.Decimal.
	TypeDecimal
	// TypeString values are string.
	TypeString
	// TypeTimestamp values are UTC time.Time at millisecond precision.
	TypeTimestamp
)

// String returns the name used in JSON schema output.
func (t FieldType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeString:
		return "string"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// MarshalText renders the type name in JSON output.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Field describes one field of a collection.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	// Nullable fields may hold an explicit null and are always present in
	// normalized documents.
	Nullable bool `json:"nullable,omitempty"`
	// References names the collection whose _id this field must resolve to.
	References string `json:"references,omitempty"`
	// RefMatch lists field values the referenced record must carry.
	RefMatch map[string]string `json:"ref_match,omitempty"`
	Enum     []string          `json:"enum,omitempty"`
	Min      *float64          `json:"min,omitempty"`
	// Precision and Scale bound decimal fields: at most Precision digits,
	// Scale of them after the point.
	Precision int  `json:"precision,omitempty"`
	Scale     int  `json:"scale,omitempty"`
	Unique    bool `json:"unique,omitempty"`
	// AutoNow fields default to the current time on insert.
	AutoNow bool `json:"auto_now,omitempty"`
}

// Relationship is an inbound reference from one collection's field.
type Relationship struct {
	Collection string `json:"collection"`
	Field      string `json:"field"`
	Target     string `json:"target"`
}

// Schema is the declared shape of a collection.
type Schema struct {
	Collection string  `json:"collection"`
	Fields     []Field `json:"fields"`
}

// Field returns the named field declaration.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// References returns the fields of s that point at other collections.
func (s Schema) References() []Field {
	var refs []Field
	for _, f := range s.Fields {
		if f.References != "" {
			refs = append(refs, f)
		}
	}
	return refs
}

func (s Schema) clone() Schema {
	out := Schema{Collection: s.Collection, Fields: make([]Field, len(s.Fields))}
	for i, f := range s.Fields {
		f.Enum = slices.Clone(f.Enum)
		if f.Min != nil {
			m := *f.Min
			f.Min = &m
		}
		if f.RefMatch != nil {
			m := make(map[string]string, len(f.RefMatch))
			for k, v := range f.RefMatch {
				m[k] = v
			}
			f.RefMatch = m
		}
		out.Fields[i] = f
	}
	return out
}

// Describe returns the schema registered for collection.
func Describe(collection string) (Schema, error) {
	s, ok := registry[collection]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return s.clone(), nil
}

// Collections returns every registered collection name in declaration order.
func Collections() []string {
	return slices.Clone(order)
}

// ReferencesTo lists the fields of other collections that point at collection.
func ReferencesTo(collection string) []Relationship {
	var rels []Relationship
	for _, name := range order {
		for _, f := range registry[name].Fields {
			if f.References == collection {
				rels = append(rels, Relationship{Collection: name, Field: f.Name, Target: collection})
			}
		}
	}
	return rels
}
