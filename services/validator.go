package services

import (
	"context"
	"errors"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/store"
)

// Lookup is the read access the validator needs to check references and
// uniqueness. QueryService implements it.
type Lookup interface {
	Exists(ctx context.Context, collection string, id int64) (bool, error)
	Get(ctx context.Context, collection string, id int64) (store.Document, error)
	Find(ctx context.Context, collection string, filter store.Document) ([]store.Document, error)
}

// Validator checks records against the schema registry before they are
// written. It never writes.
type Validator struct {
	lookup Lookup
}

func NewValidator(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// ValidateInsert checks a complete record destined for collection.
func (v *Validator) ValidateInsert(ctx context.Context, collection string, record store.Document) error {
	sch, err := schema.Describe(collection)
	if err != nil {
		return err
	}
	if err := undeclared(sch, record); err != nil {
		return err
	}

	self, _ := record.ID()
	for _, f := range sch.Fields {
		value, present := record[f.Name]
		if !present || value == nil {
			if f.Required {
				return invalid(MissingRequiredField, collection, f.Name, "field is required")
			}
			continue
		}
		if err := v.checkField(ctx, collection, f, value, self); err != nil {
			return err
		}
	}
	return entityRules(collection, record)
}

// ValidateUpdate checks a patch against the record stored under id. Only the
// patched fields are checked individually; record-wide rules see the record
// as it would look after the patch.
func (v *Validator) ValidateUpdate(ctx context.Context, collection string, id int64, patch store.Document) error {
	sch, err := schema.Describe(collection)
	if err != nil {
		return err
	}
	if _, ok := patch[schema.IDField]; ok {
		return invalid(InvariantViolation, collection, schema.IDField, "identifier cannot be changed")
	}
	if err := undeclared(sch, patch); err != nil {
		return err
	}

	current, err := v.lookup.Get(ctx, collection, id)
	if err != nil {
		return err
	}

	for _, f := range sch.Fields {
		value, present := patch[f.Name]
		if !present {
			continue
		}
		if value == nil {
			if f.Required {
				return invalid(MissingRequiredField, collection, f.Name, "field is required")
			}
			continue
		}
		if err := v.checkField(ctx, collection, f, value, id); err != nil {
			return err
		}
	}

	merged := current.Clone()
	for k, val := range patch {
		merged[k] = val
	}
	return entityRules(collection, merged)
}

func undeclared(sch schema.Schema, record store.Document) error {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := sch.Field(k); !ok {
			return invalid(InvariantViolation, sch.Collection, k, "field is not declared")
		}
	}
	return nil
}

// checkField validates one non-null value. self is the id of the record
// being written, excluded from uniqueness checks.
func (v *Validator) checkField(ctx context.Context, collection string, f schema.Field, value any, self int64) error {
	cv, err := schema.Coerce(f, value)
	if err != nil {
		return invalid(TypeMismatch, collection, f.Name, "expected %s, got %T", f.Type, value)
	}

	if len(f.Enum) > 0 {
		s, _ := cv.(string)
		if !slices.Contains(f.Enum, s) {
			return invalid(InvalidEnumValue, collection, f.Name, "%q is not one of %v", s, f.Enum)
		}
	}

	// Coerce has already rejected NaN and infinities, so every number
	// compares against Min.
	if f.Min != nil {
		var n decimal.Decimal
		switch x := cv.(type) {
		case int64:
			n = decimal.NewFromInt(x)
		case decimal.Decimal:
			n = x
		}
		if n.LessThan(decimal.NewFromFloat(*f.Min)) {
			return invalid(InvariantViolation, collection, f.Name, "must be at least %v", *f.Min)
		}
	}

	if d, ok := cv.(decimal.Decimal); ok && f.Precision > 0 {
		if err := checkDigits(collection, f, d); err != nil {
			return err
		}
	}

	if f.References != "" {
		if err := v.checkReference(ctx, collection, f, cv.(int64)); err != nil {
			return err
		}
	}

	if f.Unique {
		matches, err := v.lookup.Find(ctx, collection, store.Document{f.Name: cv})
		if err != nil {
			return err
		}
		for _, m := range matches {
			if id, _ := m.ID(); id != self {
				return invalid(InvariantViolation, collection, f.Name, "%v is already taken", cv)
			}
		}
	}
	return nil
}

func (v *Validator) checkReference(ctx context.Context, collection string, f schema.Field, id int64) error {
	if len(f.RefMatch) == 0 {
		ok, err := v.lookup.Exists(ctx, f.References, id)
		if err != nil {
			return err
		}
		if !ok {
			return invalid(DanglingReference, collection, f.Name, "%s %d does not exist", f.References, id)
		}
		return nil
	}

	target, err := v.lookup.Get(ctx, f.References, id)
	if errors.Is(err, ErrNotFound) {
		return invalid(DanglingReference, collection, f.Name, "%s %d does not exist", f.References, id)
	}
	if err != nil {
		return err
	}
	for key, want := range f.RefMatch {
		if !schema.Equal(target[key], want) {
			return invalid(InvariantViolation, collection, f.Name, "%s %d must have %s %q", f.References, id, key, want)
		}
	}
	return nil
}

// entityRules checks constraints spanning more than one field.
func entityRules(collection string, record store.Document) error {
	if collection != schema.Orders {
		return nil
	}
	by, on := record["treated_by"], record["treated_on"]
	if (by == nil) != (on == nil) {
		return invalid(InvariantViolation, collection, "treated_by", "treated_by and treated_on must be set together")
	}
	if schema.Equal(record["status"], "Pending") && by != nil {
		return invalid(InvariantViolation, collection, "status", "a pending order cannot be treated")
	}
	return nil
}

// checkDigits keeps decimals within the column every backend can hold
// exactly: at most Scale fractional digits and Precision digits in all.
func checkDigits(collection string, f schema.Field, d decimal.Decimal) error {
	scale := int32(f.Scale)
	if !d.Equal(d.Truncate(scale)) {
		return invalid(InvariantViolation, collection, f.Name, "at most %d decimal places allowed", f.Scale)
	}
	if d.Abs().GreaterThanOrEqual(decimal.New(1, int32(f.Precision)-scale)) {
		return invalid(InvariantViolation, collection, f.Name, "at most %d digits allowed", f.Precision)
	}
	return nil
}
