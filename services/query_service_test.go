package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/store"
)

func ids(t *testing.T, docs []store.Document) []int64 {
	t.Helper()
	out := make([]int64, len(docs))
	for i, d := range docs {
		id, ok := d.ID()
		require.True(t, ok)
		out[i] = id
	}
	return out
}

func TestInsertThenGet(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	id, err := q.Insert(ctx, schema.Items, validItem())
	require.NoError(t, err)
	assert.Equal(t, int64(4), id, "next id follows the highest existing id")

	doc, err := q.Get(ctx, schema.Items, id)
	require.NoError(t, err)
	assert.Equal(t, "Sandals", doc["name"])
	assert.True(t, decimal.NewFromInt(1500).Equal(doc["price"].(decimal.Decimal)))
	assert.Equal(t, int64(3), doc["category_id"])
	assert.Equal(t, id, doc["_id"])
}

func TestInsertRejectsOutOfRangeID(t *testing.T) {
	q := newSeededService(t)
	_, err := q.Insert(context.Background(), schema.Categories, store.Document{
		"_id":              float64(1 << 63),
		"name":             "Food",
		"description":      "Things to eat",
		"created_by":       int64(1),
		"last_modified_by": int64(1),
	})
	requireKind(t, err, TypeMismatch, "_id")

	count, err := q.Count(context.Background(), schema.Categories)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInsertCoercesJSONNumbers(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	// JSON decoding produces float64 for every number
	id, err := q.Insert(ctx, schema.Orders, store.Document{
		"user_id":  float64(1),
		"item_id":  float64(2),
		"status":   "Pending",
		"quantity": float64(3),
	})
	require.NoError(t, err)

	doc, err := q.Get(ctx, schema.Orders, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc["quantity"])
	assert.Contains(t, doc, "treated_by")
	assert.Nil(t, doc["treated_by"])
	assert.Nil(t, doc["treated_on"])
}

func TestInsertRejectsFractionalInteger(t *testing.T) {
	q := newSeededService(t)
	_, err := q.Insert(context.Background(), schema.Orders, store.Document{
		"user_id":  int64(1),
		"item_id":  int64(2),
		"status":   "Pending",
		"quantity": 1.5,
	})
	requireKind(t, err, TypeMismatch, "quantity")
}

func TestInsertFillsTimestamps(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	_, err := q.Insert(ctx, schema.Users, store.Document{
		"username":      "bolu",
		"first_name":    "Bolu",
		"last_name":     "Ade",
		"email_address": "bolu@example.com",
		"mobile_number": "234800000000",
		"status":        "active",
		"user_type":     "admin",
	})
	require.NoError(t, err)

	id, err := q.Insert(ctx, schema.Admins, store.Document{"user_id": int64(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	admin, err := q.Get(ctx, schema.Admins, id)
	require.NoError(t, err)
	assert.Equal(t, testNow, admin["created_on"])
	assert.Equal(t, testNow, admin["last_modified_on"])
}

func TestInsertTakenIDIsRejected(t *testing.T) {
	q := newSeededService(t)
	doc := validItem()
	doc["_id"] = int64(1)

	_, err := q.Insert(context.Background(), schema.Items, doc)
	requireKind(t, err, InvariantViolation, "_id")
}

func TestInsertDuplicateUsername(t *testing.T) {
	q := newSeededService(t)
	_, err := q.Insert(context.Background(), schema.Users, store.Document{
		"username":      "KolaqAlagbo",
		"first_name":    "Other",
		"last_name":     "Person",
		"email_address": "other@example.com",
		"mobile_number": "234800000001",
		"status":        "inactive",
		"user_type":     "User",
	})
	requireKind(t, err, InvariantViolation, "username")
}

func TestInsertDanglingCategory(t *testing.T) {
	q := newSeededService(t)
	doc := validItem()
	doc["category_id"] = int64(42)

	_, err := q.Insert(context.Background(), schema.Items, doc)
	requireKind(t, err, DanglingReference, "category_id")

	items, err := q.Find(context.Background(), schema.Items, nil)
	require.NoError(t, err)
	assert.Len(t, items, 3, "rejected writes leave the store unchanged")
}

func TestConcurrentInsertsGetDistinctIDs(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	got := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := q.Insert(ctx, schema.Items, validItem())
			assert.NoError(t, err)
			got <- id
		}()
	}
	wg.Wait()
	close(got)

	seen := map[int64]bool{}
	for id := range got {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestGetNotFound(t *testing.T) {
	q := newSeededService(t)
	_, err := q.Get(context.Background(), schema.Items, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownCollection(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	_, err := q.Get(ctx, "widgets", 1)
	assert.ErrorIs(t, err, schema.ErrUnknownCollection)
	_, err = q.Find(ctx, "widgets", nil)
	assert.ErrorIs(t, err, schema.ErrUnknownCollection)
	_, err = q.Insert(ctx, "widgets", store.Document{})
	assert.ErrorIs(t, err, schema.ErrUnknownCollection)
	assert.ErrorIs(t, q.Delete(ctx, "widgets", 1), schema.ErrUnknownCollection)
}

func TestFind(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	items, err := q.Find(ctx, schema.Items, store.Document{"category_id": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, items))

	items, err = q.Find(ctx, schema.Items, store.Document{"category_id": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(t, items), "filter values are coerced to the field type")

	none, err := q.Find(ctx, schema.Items, store.Document{"category_id": int64(3)})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	pending, err := q.Find(ctx, schema.Orders, store.Document{"treated_by": nil})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(t, pending))

	_, err = q.Find(ctx, schema.Items, store.Document{"colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFindOne(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	doc, err := q.FindOne(ctx, schema.Items, store.Document{"category_id": int64(1)})
	require.NoError(t, err)
	id, _ := doc.ID()
	assert.Equal(t, int64(1), id, "lowest id wins")

	_, err = q.FindOne(ctx, schema.Users, store.Document{"username": "nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	require.NoError(t, q.Update(ctx, schema.Categories, 1, store.Document{"name": "Food"}))

	doc, err := q.Get(ctx, schema.Categories, 1)
	require.NoError(t, err)
	assert.Equal(t, "Food", doc["name"])
	assert.Equal(t, int64(1), doc["_id"])
	assert.Equal(t, "Apparel including shirts, trousers, and dresses", doc["description"])
	assert.Equal(t, int64(1), doc["created_by"])

	assert.ErrorIs(t, q.Update(ctx, schema.Categories, 9, store.Document{"name": "x"}), ErrNotFound)
	requireKind(t, q.Update(ctx, schema.Categories, 1, store.Document{"created_by": int64(5)}), DanglingReference, "created_by")
}

func TestDeleteIsIdempotent(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	require.NoError(t, q.Delete(ctx, schema.Orders, 1))
	require.NoError(t, q.Delete(ctx, schema.Orders, 1))

	_, err := q.Get(ctx, schema.Orders, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDoesNotCascade(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	require.NoError(t, q.Delete(ctx, schema.Categories, 1))

	items, err := q.Find(ctx, schema.Items, store.Document{"category_id": int64(1)})
	require.NoError(t, err)
	assert.Len(t, items, 2, "items keep their now dangling reference")
}

func TestJoinOneItemsWithCategory(t *testing.T) {
	q := newSeededService(t)
	docs, err := q.JoinOne(context.Background(), schema.Items, nil, JoinSpec{
		From: schema.Categories, LocalField: "category_id", ForeignField: "_id",
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	names := func(d store.Document) []string {
		var out []string
		for _, c := range d[schema.Categories].([]store.Document) {
			out = append(out, c["name"].(string))
		}
		return out
	}
	assert.Equal(t, []string{"Clothing"}, names(docs[0]))
	assert.Equal(t, []string{"Clothing"}, names(docs[1]))
	assert.Equal(t, []string{"Furniture"}, names(docs[2]))
}

func TestJoinMany(t *testing.T) {
	q := newSeededService(t)
	docs, err := q.JoinMany(context.Background(), schema.Orders, store.Document{"_id": int64(2)}, []JoinSpec{
		{From: schema.Users, LocalField: "user_id", ForeignField: "_id", As: "ordered_by"},
		{From: schema.Items, LocalField: "item_id", ForeignField: "_id", As: "item_details"},
		{From: schema.Admins, LocalField: "treated_by", ForeignField: "_id", As: "admin_details"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	order := docs[0]
	assert.Equal(t, []int64{1}, ids(t, order["ordered_by"].([]store.Document)))
	assert.Equal(t, []int64{3}, ids(t, order["item_details"].([]store.Document)))
	assert.Equal(t, []int64{1}, ids(t, order["admin_details"].([]store.Document)))
}

func TestJoinNullLocalMatchesNullForeign(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	// no admin has a null _id
	docs, err := q.JoinOne(ctx, schema.Orders, store.Document{"_id": int64(1)}, JoinSpec{
		From: schema.Admins, LocalField: "treated_by", ForeignField: "_id", As: "admin_details",
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	details, ok := docs[0]["admin_details"].([]store.Document)
	require.True(t, ok, "join field is always an array")
	assert.Empty(t, details)

	// order 1 is the only untreated order, so it pairs with itself
	docs, err = q.JoinOne(ctx, schema.Orders, store.Document{"_id": int64(1)}, JoinSpec{
		From: schema.Orders, LocalField: "treated_by", ForeignField: "treated_by", As: "same_treater",
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []int64{1}, ids(t, docs[0]["same_treater"].([]store.Document)))
}

func TestJoinResultsAreIndependent(t *testing.T) {
	q := newSeededService(t)
	docs, err := q.JoinOne(context.Background(), schema.Items, nil, JoinSpec{
		From: schema.Categories, LocalField: "category_id", ForeignField: "_id", As: "category_info",
	})
	require.NoError(t, err)

	docs[0]["category_info"].([]store.Document)[0]["name"] = "mutated"
	assert.Equal(t, "Clothing", docs[1]["category_info"].([]store.Document)[0]["name"])
}

func TestJoinErrors(t *testing.T) {
	q := newSeededService(t)
	ctx := context.Background()

	_, err := q.JoinOne(ctx, schema.Items, nil, JoinSpec{From: "widgets", LocalField: "category_id", ForeignField: "_id"})
	assert.ErrorIs(t, err, schema.ErrUnknownCollection)

	_, err = q.JoinOne(ctx, schema.Items, nil, JoinSpec{From: schema.Categories, LocalField: "colour", ForeignField: "_id"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = q.JoinOne(ctx, schema.Items, nil, JoinSpec{From: schema.Categories, LocalField: "category_id", ForeignField: "colour"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSeedIsRepeatable(t *testing.T) {
	q := newSeededService(t)
	n, err := Seed(context.Background(), q, models.SampleData(testNow))
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := q.Count(context.Background(), schema.Users)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// The relational backend returns its own value types; reads must come back
// in the same canonical form as from memory.
func TestQueryServiceOnSQLite(t *testing.T) {
	q := newSeededSQLiteService(t)
	ctx := context.Background()

	order, err := q.Get(ctx, schema.Orders, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order["treated_by"])
	assert.Equal(t, testNow, order["treated_on"])

	item, err := q.Get(ctx, schema.Items, 3)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100000).Equal(item["price"].(decimal.Decimal)))

	// prices keep their cents through the relational column
	sandals := validItem()
	sandals["price"] = "999999999999.99"
	id, err := q.Insert(ctx, schema.Items, sandals)
	require.NoError(t, err)
	item, err = q.Get(ctx, schema.Items, id)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("999999999999.99").Equal(item["price"].(decimal.Decimal)))

	docs, err := q.JoinOne(ctx, schema.Items, nil, JoinSpec{
		From: schema.Categories, LocalField: "category_id", ForeignField: "_id", As: "category_info",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 2}, []int64{
		docs[0]["category_info"].([]store.Document)[0]["_id"].(int64),
		docs[1]["category_info"].([]store.Document)[0]["_id"].(int64),
		docs[2]["category_info"].([]store.Document)[0]["_id"].(int64),
	})

	require.NoError(t, q.Update(ctx, schema.Categories, 1, store.Document{"name": "Food"}))
	require.NoError(t, q.Delete(ctx, schema.Orders, 1))
	require.NoError(t, q.Delete(ctx, schema.Orders, 1))

	_, err = q.Insert(ctx, schema.Users, store.Document{
		"username":      "Alaguntan",
		"first_name":    "x",
		"last_name":     "y",
		"email_address": "z",
		"mobile_number": "0",
		"status":        "active",
		"user_type":     "User",
	})
	requireKind(t, err, InvariantViolation, "username")
}
