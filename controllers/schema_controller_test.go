package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSchemas(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/schemas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	schemas := decodeData[[]map[string]any](t, env)
	var names []string
	for _, s := range schemas {
		names = append(names, s["collection"].(string))
	}
	assert.Equal(t, []string{"users", "admins", "categories", "items", "orders"}, names)
}

func TestGetSchema(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/schemas/admins", nil)
	require.Equal(t, http.StatusOK, w.Code)

	sch := decodeData[map[string]any](t, env)
	assert.Equal(t, "admins", sch["collection"])

	fields := sch["fields"].([]any)
	userID := fields[1].(map[string]any)
	assert.Equal(t, "user_id", userID["name"])
	assert.Equal(t, "integer", userID["type"])
	assert.Equal(t, "users", userID["references"])
	assert.Equal(t, map[string]any{"user_type": "admin"}, userID["ref_match"])

	// categories, items and orders all point at admins
	refs := sch["referenced_by"].([]any)
	assert.NotEmpty(t, refs)
	for _, r := range refs {
		assert.Equal(t, "admins", r.(map[string]any)["target"])
	}
}

func TestGetSchemaUnknownCollection(t *testing.T) {
	router := setupTestRouter(t)

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/schemas/widgets", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_COLLECTION", env.Error.Code)
}

func TestGetSchemaNotReferenced(t *testing.T) {
	router := setupTestRouter(t)

	_, env := doRequest(t, router, http.MethodGet, "/api/v1/schemas/orders", nil)
	sch := decodeData[map[string]any](t, env)
	assert.Equal(t, []any{}, sch["referenced_by"])
}
