package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/services"
	"github.com/kendall-kelly/inventory-api/store"
)

// envelope is the decoded response body.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// setupTestRouter installs a seeded in-memory query service and returns a
// router with every inventory route registered.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	q := services.NewQueryService(store.NewMemoryStore())
	_, err := services.Seed(context.Background(), q, models.SampleData(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	services.SetQueryService(q)
	services.SetImageService(services.NewImageService(services.NewMockS3Service(), q))
	t.Cleanup(func() {
		services.SetQueryService(nil)
		services.SetImageService(nil)
	})

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/schemas", ListSchemas)
	v1.GET("/schemas/:collection", GetSchema)
	v1.GET("/collections/:collection", ListDocuments)
	v1.GET("/collections/:collection/:id", GetDocument)
	v1.POST("/collections/:collection", CreateDocument)
	v1.PATCH("/collections/:collection/:id", UpdateDocument)
	v1.DELETE("/collections/:collection/:id", DeleteDocument)
	v1.GET("/joins/:collection", JoinDocuments)
	v1.GET("/reports/items-with-category", ItemsWithCategory)
	v1.GET("/reports/orders/:id", OrderDetails)
	v1.POST("/items/:id/image", UploadItemImage)
	v1.GET("/items/:id/image", GetItemImage)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
