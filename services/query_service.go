package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/store"
)

// JoinSpec describes one lookup from a base collection into From. Each base
// record gains the field As holding every From record whose ForeignField
// equals the base record's LocalField.
type JoinSpec struct {
	From         string `json:"from"`
	LocalField   string `json:"local_field"`
	ForeignField string `json:"foreign_field"`
	As           string `json:"as"`
}

func (j JoinSpec) as() string {
	if j.As == "" {
		return j.From
	}
	return j.As
}

// QueryService is the single entry point for reading and writing
// collections. Writes are validated; reads are normalized to the canonical
// value types of the schema registry.
type QueryService struct {
	store     store.Store
	validator *Validator
	now       func() time.Time

	// writeMu serializes id assignment and validated writes.
	writeMu sync.Mutex
}

var queryServiceInstance *QueryService

// NewQueryService builds a façade over s.
func NewQueryService(s store.Store) *QueryService {
	q := &QueryService{store: s, now: time.Now}
	q.validator = NewValidator(q)
	return q
}

// InitQueryService builds the façade and installs it as the shared instance.
func InitQueryService(s store.Store) *QueryService {
	queryServiceInstance = NewQueryService(s)
	return queryServiceInstance
}

// GetQueryService returns the shared instance.
func GetQueryService() *QueryService {
	return queryServiceInstance
}

// SetQueryService replaces the shared instance (primarily for testing).
func SetQueryService(q *QueryService) {
	queryServiceInstance = q
}

// Store returns the backend the façade writes to.
func (q *QueryService) Store() store.Store {
	return q.store
}

// Exists reports whether collection holds a record with id.
func (q *QueryService) Exists(ctx context.Context, collection string, id int64) (bool, error) {
	if _, err := schema.Describe(collection); err != nil {
		return false, err
	}
	return q.store.Exists(ctx, collection, id)
}

// Get returns the record stored under id.
func (q *QueryService) Get(ctx context.Context, collection string, id int64) (store.Document, error) {
	sch, err := schema.Describe(collection)
	if err != nil {
		return nil, err
	}
	doc, err := q.store.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	return sch.Normalize(doc), nil
}

// Find returns every record whose fields equal the filter's values, in
// ascending id order. An empty filter matches everything.
func (q *QueryService) Find(ctx context.Context, collection string, filter store.Document) ([]store.Document, error) {
	sch, err := schema.Describe(collection)
	if err != nil {
		return nil, err
	}
	match, err := compileFilter(sch, filter)
	if err != nil {
		return nil, err
	}

	docs, err := q.store.Scan(ctx, collection, match)
	if err != nil {
		return nil, err
	}
	out := make([]store.Document, len(docs))
	for i, d := range docs {
		out[i] = sch.Normalize(d)
	}
	return out, nil
}

// FindOne returns the matching record with the lowest id.
func (q *QueryService) FindOne(ctx context.Context, collection string, filter store.Document) (store.Document, error) {
	docs, err := q.Find(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no %s matches filter", ErrNotFound, collection)
	}
	return docs[0], nil
}

// Count returns the number of records in collection.
func (q *QueryService) Count(ctx context.Context, collection string) (int, error) {
	if _, err := schema.Describe(collection); err != nil {
		return 0, err
	}
	docs, err := q.store.Scan(ctx, collection, nil)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func compileFilter(sch schema.Schema, filter store.Document) (store.Predicate, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	type term struct {
		field schema.Field
		want  any
	}
	terms := make([]term, 0, len(filter))
	for k, v := range filter {
		f, ok := sch.Field(k)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, sch.Collection, k)
		}
		if cv, err := schema.Coerce(f, v); err == nil {
			v = cv
		}
		terms = append(terms, term{field: f, want: v})
	}
	return func(d store.Document) bool {
		for _, t := range terms {
			got := d[t.field.Name]
			if cv, err := schema.Coerce(t.field, got); err == nil {
				got = cv
			}
			if !schema.Equal(got, t.want) {
				return false
			}
		}
		return true
	}, nil
}

// canonical coerces every declared field of record. Undeclared fields are
// copied as they are and left to the validator.
func canonical(sch schema.Schema, record store.Document) (store.Document, error) {
	out := make(store.Document, len(record))
	for k, v := range record {
		f, ok := sch.Field(k)
		if !ok || v == nil {
			out[k] = v
			continue
		}
		cv, err := schema.Coerce(f, v)
		if err != nil {
			return nil, invalid(TypeMismatch, sch.Collection, k, "expected %s, got %T", f.Type, v)
		}
		out[k] = cv
	}
	return out, nil
}

// Insert validates record and writes it, returning its id. Without an _id
// the next free id is assigned.
func (q *QueryService) Insert(ctx context.Context, collection string, record store.Document) (int64, error) {
	sch, err := schema.Describe(collection)
	if err != nil {
		return 0, err
	}
	doc, err := canonical(sch, record)
	if err != nil {
		return 0, err
	}

	now := q.now().UTC().Truncate(time.Millisecond)
	for _, f := range sch.Fields {
		if f.AutoNow && doc[f.Name] == nil {
			doc[f.Name] = now
		}
		if _, ok := doc[f.Name]; !ok && f.Nullable {
			doc[f.Name] = nil
		}
	}

	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	id, hasID := doc.ID()
	if hasID {
		taken, err := q.store.Exists(ctx, collection, id)
		if err != nil {
			return 0, err
		}
		if taken {
			return 0, invalid(InvariantViolation, collection, schema.IDField, "%s %d already exists", collection, id)
		}
	} else {
		if id, err = q.nextID(ctx, collection); err != nil {
			return 0, err
		}
		doc[schema.IDField] = id
	}

	if err := q.validator.ValidateInsert(ctx, collection, doc); err != nil {
		return 0, err
	}
	if err := q.store.Put(ctx, collection, id, doc); err != nil {
		return 0, err
	}
	slog.Debug("inserted record", "collection", collection, "id", id)
	return id, nil
}

func (q *QueryService) nextID(ctx context.Context, collection string) (int64, error) {
	docs, err := q.store.Scan(ctx, collection, nil)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, d := range docs {
		if id, ok := d.ID(); ok && id > max {
			max = id
		}
	}
	return max + 1, nil
}

// Update applies patch to the record stored under id. Fields not named in
// patch are left unchanged.
func (q *QueryService) Update(ctx context.Context, collection string, id int64, patch store.Document) error {
	sch, err := schema.Describe(collection)
	if err != nil {
		return err
	}

	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	if _, err := q.Get(ctx, collection, id); err != nil {
		return err
	}
	doc, err := canonical(sch, patch)
	if err != nil {
		return err
	}
	if err := q.validator.ValidateUpdate(ctx, collection, id, doc); err != nil {
		return err
	}
	ok, err := q.store.Patch(ctx, collection, id, doc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %d", ErrNotFound, collection, id)
	}
	return nil
}

// Delete removes the record stored under id. Deleting an absent record
// succeeds. References to the record are not followed.
func (q *QueryService) Delete(ctx context.Context, collection string, id int64) error {
	if _, err := schema.Describe(collection); err != nil {
		return err
	}
	removed, err := q.store.Remove(ctx, collection, id)
	if err != nil {
		return err
	}
	slog.Debug("deleted record", "collection", collection, "id", id, "existed", removed)
	return nil
}

// JoinOne returns the base records matching baseFilter, each carrying the
// records of one lookup.
func (q *QueryService) JoinOne(ctx context.Context, base string, baseFilter store.Document, spec JoinSpec) ([]store.Document, error) {
	return q.JoinMany(ctx, base, baseFilter, []JoinSpec{spec})
}

// JoinMany applies every spec to the original base records. Joins do not
// chain: a later spec cannot refer to the output of an earlier one.
func (q *QueryService) JoinMany(ctx context.Context, base string, baseFilter store.Document, specs []JoinSpec) ([]store.Document, error) {
	baseSchema, err := schema.Describe(base)
	if err != nil {
		return nil, err
	}

	foreign := make([][]store.Document, len(specs))
	for i, spec := range specs {
		fromSchema, err := schema.Describe(spec.From)
		if err != nil {
			return nil, err
		}
		if _, ok := baseSchema.Field(spec.LocalField); !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, base, spec.LocalField)
		}
		if _, ok := fromSchema.Field(spec.ForeignField); !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, spec.From, spec.ForeignField)
		}
		if foreign[i], err = q.Find(ctx, spec.From, nil); err != nil {
			return nil, err
		}
	}

	records, err := q.Find(ctx, base, baseFilter)
	if err != nil {
		return nil, err
	}

	out := make([]store.Document, len(records))
	for r, record := range records {
		joined := record.Clone()
		for i, spec := range specs {
			// A null local value matches foreign records whose field is
			// null or absent.
			local := record[spec.LocalField]
			matches := []store.Document{}
			for _, f := range foreign[i] {
				if schema.Equal(f[spec.ForeignField], local) {
					matches = append(matches, f.Clone())
				}
			}
			joined[spec.as()] = matches
		}
		out[r] = joined
	}
	return out, nil
}
