package models

import (
	"fmt"
	"time"

	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/shopspring/decimal"
)

// Tables lists the model of every collection in dependency order.
func Tables() []any {
	return []any{&User{}, &Admin{}, &Category{}, &Item{}, &Order{}}
}

// ForCollection returns a new zero model for the named collection.
func ForCollection(name string) (any, bool) {
	switch name {
	case schema.Users:
		return &User{}, true
	case schema.Admins:
		return &Admin{}, true
	case schema.Categories:
		return &Category{}, true
	case schema.Items:
		return &Item{}, true
	case schema.Orders:
		return &Order{}, true
	}
	return nil, false
}

// decoder reads typed values out of a document and keeps the first error.
type decoder struct {
	collection string
	doc        map[string]any
	err        error
}

func (d *decoder) value(key string, t schema.FieldType, required bool) any {
	raw, ok := d.doc[key]
	if !ok || raw == nil {
		if required && d.err == nil {
			d.err = fmt.Errorf("%s: missing field %q", d.collection, key)
		}
		return nil
	}
	v, err := schema.Coerce(schema.Field{Name: key, Type: t}, raw)
	if err != nil {
		if d.err == nil {
			d.err = fmt.Errorf("%s: %w", d.collection, err)
		}
		return nil
	}
	return v
}

func (d *decoder) integer(key string) int64 {
	v, _ := d.value(key, schema.TypeInteger, true).(int64)
	return v
}

func (d *decoder) optionalInteger(key string) *int64 {
	v, ok := d.value(key, schema.TypeInteger, false).(int64)
	if !ok {
		return nil
	}
	return &v
}

func (d *decoder) str(key string) string {
	v, _ := d.value(key, schema.TypeString, true).(string)
	return v
}

func (d *decoder) optionalStr(key string) string {
	v, _ := d.value(key, schema.TypeString, false).(string)
	return v
}

func (d *decoder) decimal(key string) decimal.Decimal {
	v, _ := d.value(key, schema.TypeDecimal, true).(decimal.Decimal)
	return v
}

func (d *decoder) timestamp(key string) time.Time {
	v, _ := d.value(key, schema.TypeTimestamp, true).(time.Time)
	return v
}

func (d *decoder) optionalTimestamp(key string) *time.Time {
	v, ok := d.value(key, schema.TypeTimestamp, false).(time.Time)
	if !ok {
		return nil
	}
	return &v
}

func (d *decoder) enum(key string, valid func(string) bool) string {
	v := d.str(key)
	if d.err == nil && !valid(v) {
		d.err = fmt.Errorf("%s: invalid %s %q", d.collection, key, v)
	}
	return v
}

// nullable converts an optional reference into a document value.
func nullable[T ~int64](id *T) any {
	if id == nil {
		return nil
	}
	return int64(*id)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
