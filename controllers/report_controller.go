package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/services"
)

// ItemsWithCategory handles GET /api/v1/reports/items-with-category
func ItemsWithCategory(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	docs, err := services.NewCatalog(q).ItemsWithCategory(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, docs)
}

// OrderDetails handles GET /api/v1/reports/orders/:id
// The order comes back with ordered_by, item_details and admin_details.
func OrderDetails(c *gin.Context) {
	q, ok := queryService(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := services.NewCatalog(q).OrderDetails(c.Request.Context(), models.OrderID(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, doc)
}
