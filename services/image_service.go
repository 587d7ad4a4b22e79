package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/store"
	"github.com/kendall-kelly/inventory-api/utils"
)

// ImageURLExpiry is how long a presigned image URL stays valid
const ImageURLExpiry = time.Hour

// ImageService manages the product image of each item
type ImageService interface {
	// UploadItemImage validates and stores an image, records its key on the
	// item and returns the key. A previous image is removed.
	UploadItemImage(ctx context.Context, id models.ItemID, fileHeader *multipart.FileHeader) (string, error)

	// ItemImageURL returns a temporary URL for the item's image
	ItemImageURL(ctx context.Context, id models.ItemID) (string, error)
}

// S3ImageService implements ImageService using S3 for storage
type S3ImageService struct {
	s3Service S3Interface
	catalog   *Catalog
	now       func() time.Time
}

var imageServiceInstance ImageService

// NewImageService builds an image service over s3Service and q
func NewImageService(s3Service S3Interface, q *QueryService) *S3ImageService {
	return &S3ImageService{
		s3Service: s3Service,
		catalog:   NewCatalog(q),
		now:       time.Now,
	}
}

// InitImageService builds the image service and installs it as the shared instance
func InitImageService(s3Service S3Interface, q *QueryService) ImageService {
	imageServiceInstance = NewImageService(s3Service, q)
	return imageServiceInstance
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

func (s *S3ImageService) UploadItemImage(ctx context.Context, id models.ItemID, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	item, err := s.catalog.Item(ctx, id)
	if err != nil {
		return "", err
	}
	content, err := utils.ReadImageFile(fileHeader)
	if err != nil {
		return "", err
	}

	key := utils.ImageObjectKey(int64(id), fileHeader.Filename, s.now())
	if err := s.s3Service.PutObject(ctx, key, content, utils.ImageContentType); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if err := s.catalog.q.Update(ctx, schema.Items, int64(id), store.Document{"image_key": key}); err != nil {
		if delErr := s.s3Service.DeleteObject(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned image", "key", key, "error", delErr)
		}
		return "", err
	}

	if item.ImageKey != "" && item.ImageKey != key {
		if err := s.s3Service.DeleteObject(ctx, item.ImageKey); err != nil {
			slog.Warn("failed to remove previous image", "key", item.ImageKey, "error", err)
		}
	}
	return key, nil
}

func (s *S3ImageService) ItemImageURL(ctx context.Context, id models.ItemID) (string, error) {
	item, err := s.catalog.Item(ctx, id)
	if err != nil {
		return "", err
	}
	if item.ImageKey == "" {
		return "", fmt.Errorf("%w: item %d", ErrNoImage, id)
	}

	url, err := s.s3Service.PresignGet(ctx, item.ImageKey, ImageURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}
