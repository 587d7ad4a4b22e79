package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/schema"
)

// SchemaResponse is a collection schema plus the fields of other
// collections that reference it.
type SchemaResponse struct {
	schema.Schema
	ReferencedBy []schema.Relationship `json:"referenced_by"`
}

func describe(collection string) (SchemaResponse, error) {
	sch, err := schema.Describe(collection)
	if err != nil {
		return SchemaResponse{}, err
	}
	refs := schema.ReferencesTo(collection)
	if refs == nil {
		refs = []schema.Relationship{}
	}
	return SchemaResponse{Schema: sch, ReferencedBy: refs}, nil
}

// ListSchemas handles GET /api/v1/schemas
func ListSchemas(c *gin.Context) {
	var out []SchemaResponse
	for _, name := range schema.Collections() {
		s, err := describe(name)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		out = append(out, s)
	}
	respond(c, http.StatusOK, out)
}

// GetSchema handles GET /api/v1/schemas/:collection
func GetSchema(c *gin.Context) {
	s, err := describe(c.Param("collection"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, s)
}
