package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/services"
	"github.com/kendall-kelly/inventory-api/store"
)

// Query parameters that are not field filters.
const (
	paramOne  = "one"
	paramJoin = "join"
)

// parseFilter turns the query string into a field filter, parsing each
// value as the declared type of its field.
func parseFilter(c *gin.Context, collection string) (store.Document, error) {
	sch, err := schema.Describe(collection)
	if err != nil {
		return nil, err
	}
	filter := store.Document{}
	for key, values := range c.Request.URL.Query() {
		if key == paramOne || key == paramJoin || len(values) == 0 {
			continue
		}
		f, ok := sch.Field(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", services.ErrUnknownField, collection, key)
		}
		v, err := schema.Parse(f, values[0])
		if err != nil {
			return nil, err
		}
		filter[key] = v
	}
	return filter, nil
}

// ListDocuments handles GET /api/v1/collections/:collection
// Query parameters filter by field equality; one=true returns only the
// match with the lowest id.
func ListDocuments(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	collection := c.Param("collection")
	filter, err := parseFilter(c, collection)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if c.Query(paramOne) == "true" {
		doc, err := q.FindOne(c.Request.Context(), collection, filter)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respond(c, http.StatusOK, doc)
		return
	}

	docs, err := q.Find(c.Request.Context(), collection, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, docs)
}

// GetDocument handles GET /api/v1/collections/:collection/:id
func GetDocument(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := q.Get(c.Request.Context(), c.Param("collection"), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, doc)
}

// CreateDocument handles POST /api/v1/collections/:collection
func CreateDocument(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request data", gin.H{"reason": err.Error()})
		return
	}

	id, err := q.Insert(c.Request.Context(), c.Param("collection"), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{schema.IDField: id})
}

// UpdateDocument handles PATCH /api/v1/collections/:collection/:id
// Only the fields present in the body are changed.
func UpdateDocument(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request data", gin.H{"reason": err.Error()})
		return
	}

	collection := c.Param("collection")
	if err := q.Update(c.Request.Context(), collection, id, body); err != nil {
		respondServiceError(c, err)
		return
	}
	doc, err := q.Get(c.Request.Context(), collection, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/v1/collections/:collection/:id
// Deleting an absent record succeeds.
func DeleteDocument(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := q.Delete(c.Request.Context(), c.Param("collection"), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{schema.IDField: id})
}

// parseJoin reads one join parameter of the form from:local:foreign[:as].
func parseJoin(raw string) (services.JoinSpec, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return services.JoinSpec{}, false
	}
	spec := services.JoinSpec{From: parts[0], LocalField: parts[1], ForeignField: parts[2]}
	if len(parts) == 4 {
		spec.As = parts[3]
	}
	if spec.From == "" || spec.LocalField == "" || spec.ForeignField == "" {
		return services.JoinSpec{}, false
	}
	return spec, true
}

// JoinDocuments handles GET /api/v1/joins/:collection
// Each join=from:local:foreign[:as] parameter adds one lookup; the remaining
// parameters filter the base collection.
func JoinDocuments(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	raw := c.QueryArray(paramJoin)
	if len(raw) == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_JOIN", "At least one join parameter is required", nil)
		return
	}
	specs := make([]services.JoinSpec, 0, len(raw))
	for _, r := range raw {
		spec, ok := parseJoin(r)
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_JOIN", "Join must have the form from:local:foreign[:as]", gin.H{"join": r})
			return
		}
		specs = append(specs, spec)
	}

	collection := c.Param("collection")
	filter, err := parseFilter(c, collection)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	docs, err := q.JoinMany(c.Request.Context(), collection, filter, specs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, docs)
}
