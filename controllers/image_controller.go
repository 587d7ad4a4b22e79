package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/services"
)

// ImageFormField is the multipart field carrying the uploaded image.
const ImageFormField = "image"

func imageService(c *gin.Context) (services.ImageService, bool) {
	svc := services.GetImageService()
	if svc == nil {
		respondError(c, http.StatusServiceUnavailable, "IMAGES_DISABLED", "Image storage is not configured", nil)
		return nil, false
	}
	return svc, true
}

// UploadItemImage handles POST /api/v1/items/:id/image
func UploadItemImage(c *gin.Context) {
	svc, ok := imageService(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(ImageFormField)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the \"image\" field", nil)
		return
	}

	key, err := svc.UploadItemImage(c.Request.Context(), models.ItemID(id), fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"_id": id, "image_key": key})
}

// GetItemImage handles GET /api/v1/items/:id/image
// The response carries a presigned URL rather than the image itself.
func GetItemImage(c *gin.Context) {
	svc, ok := imageService(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	url, err := svc.ItemImageURL(c.Request.Context(), models.ItemID(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"url":        url,
		"expires_in": int(services.ImageURLExpiry.Seconds()),
	})
}
