// Package store defines the document store boundary and its backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"math"
	"sort"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// IDField is the document key holding the record identifier.
const IDField = "_id"

// Document is one record: field name to value.
type Document map[string]any

// ID returns the document identifier when it is an integer.
func (d Document) ID() (int64, bool) {
	switch v := d[IDField].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v == math.Trunc(v) && v >= -(1<<63) && v < 1<<63 {
			return int64(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Clone returns a copy of d. Documents are flat, so values are shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// Predicate selects documents during a scan. A nil predicate selects all.
type Predicate func(Document) bool

// Store is the interface every backend implements. Collections are
// addressed by name and documents by integer id. Each call is atomic for
// the single document it touches.
type Store interface {
	// Exists reports whether a document with id is present.
	Exists(ctx context.Context, collection string, id int64) (bool, error)

	// Get returns a document by id, or nil if it does not exist.
	Get(ctx context.Context, collection string, id int64) (Document, error)

	// Put inserts or replaces a document.
	Put(ctx context.Context, collection string, id int64, doc Document) error

	// Patch merges fields into an existing document. Returns false if the
	// document does not exist.
	Patch(ctx context.Context, collection string, id int64, fields Document) (bool, error)

	// Remove deletes a document. Returns true if it existed.
	Remove(ctx context.Context, collection string, id int64) (bool, error)

	// Scan returns the documents matching match in ascending id order.
	Scan(ctx context.Context, collection string, match Predicate) ([]Document, error)

	// Close releases backend resources.
	Close() error
}

// withID returns a copy of doc carrying id under IDField.
func withID(doc Document, id int64) Document {
	out := doc.Clone()
	if out == nil {
		out = Document{}
	}
	out[IDField] = id
	return out
}

// sortByID orders documents by ascending id; documents without an integer
// id sort last.
func sortByID(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, aok := docs[i].ID()
		b, bok := docs[j].ID()
		if aok != bok {
			return aok
		}
		return a < b
	})
}

func filter(docs []Document, match Predicate) []Document {
	if match == nil {
		return docs
	}
	out := docs[:0]
	for _, d := range docs {
		if match(d) {
			out = append(out, d)
		}
	}
	return out
}
