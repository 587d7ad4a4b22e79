package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/middleware"
	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/services"
	"github.com/kendall-kelly/inventory-api/utils"
)

// respond writes the success envelope.
func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the error envelope. details is omitted when nil.
func respondError(c *gin.Context, status int, code, message string, details gin.H) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondServiceError maps an error from the services layer onto a status
// code and error code.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var uploadErr *utils.FileUploadError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", verr.Error(), gin.H{
			"kind":       verr.Kind,
			"collection": verr.Collection,
			"field":      verr.Field,
			"reason":     verr.Reason,
		})
	case errors.As(err, &uploadErr):
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
	case errors.Is(err, schema.ErrUnknownCollection):
		respondError(c, http.StatusNotFound, "UNKNOWN_COLLECTION", err.Error(), nil)
	case errors.Is(err, services.ErrUnknownField):
		respondError(c, http.StatusBadRequest, "UNKNOWN_FIELD", err.Error(), nil)
	case errors.Is(err, schema.ErrTypeMismatch):
		respondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error(), nil)
	case errors.Is(err, services.ErrNoImage):
		respondError(c, http.StatusNotFound, "IMAGE_NOT_FOUND", "Item has no image", nil)
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		slog.Error("request failed",
			"request_id", middleware.GetRequestID(c),
			"path", c.FullPath(),
			"error", err,
		)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process request", nil)
	}
}

// parseID reads an integer path parameter, writing a 400 response when it
// is malformed.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "ID must be an integer", nil)
		return 0, false
	}
	return id, true
}

func queryService(c *gin.Context) (*services.QueryService, bool) {
	q := services.GetQueryService()
	if q == nil {
		respondError(c, http.StatusServiceUnavailable, "DATABASE_ERROR", "Store is not connected", nil)
		return nil, false
	}
	return q, true
}
