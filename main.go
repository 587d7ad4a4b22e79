package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/inventory-api/config"
	"github.com/kendall-kelly/inventory-api/controllers"
	"github.com/kendall-kelly/inventory-api/middleware"
	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/schema"
	"github.com/kendall-kelly/inventory-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg)
	slog.Info("starting Inventory API server", "env", cfg.GoEnv, "backend", cfg.StoreBackend)

	ctx := context.Background()

	// Connect to the store
	if err := config.ConnectStore(ctx, cfg); err != nil {
		slog.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer config.GetStore().Close()

	q := services.InitQueryService(config.GetStore())

	if cfg.SeedOnStart {
		n, err := services.Seed(ctx, q, models.SampleData(time.Now()))
		if err != nil {
			slog.Error("failed to seed sample data", "error", err)
			os.Exit(1)
		}
		slog.Info("sample data loaded", "inserted", n)
	}

	if cfg.ImagesEnabled() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			slog.Error("failed to initialize S3", "error", err)
			os.Exit(1)
		}
		services.InitImageService(s3Service, q)
		slog.Info("item images enabled", "bucket", cfg.AWSS3Bucket)
	}

	router, err := setupRouter(cfg)
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		os.Exit(1)
	}

	addr := ":" + cfg.Port
	slog.Info("server is running", "addr", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// setupRouter registers every route. Routes that change data sit behind
// the write-access middleware when Auth0 is configured.
func setupRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(slog.Default()))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	guard, err := middleware.RequireWriteAccess(cfg)
	if err != nil {
		return nil, err
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.GET("/schemas", controllers.ListSchemas)
		v1.GET("/schemas/:collection", controllers.GetSchema)

		v1.GET("/collections/:collection", controllers.ListDocuments)
		v1.GET("/collections/:collection/:id", controllers.GetDocument)
		v1.POST("/collections/:collection", write(controllers.CreateDocument)...)
		v1.PATCH("/collections/:collection/:id", write(controllers.UpdateDocument)...)
		v1.DELETE("/collections/:collection/:id", write(controllers.DeleteDocument)...)

		v1.GET("/joins/:collection", controllers.JoinDocuments)

		v1.GET("/reports/items-with-category", controllers.ItemsWithCategory)
		v1.GET("/reports/orders/:id", controllers.OrderDetails)

		v1.POST("/items/:id/image", write(controllers.UploadItemImage)...)
		v1.GET("/items/:id/image", controllers.GetItemImage)
	}

	return router, nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inventory API is running",
	})
}

// databaseStatus reports the connected backend and the record count of
// every collection.
func databaseStatus(c *gin.Context) {
	q := services.GetQueryService()
	if q == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Store is not connected",
			},
		})
		return
	}

	counts := gin.H{}
	for _, name := range schema.Collections() {
		n, err := q.Count(c.Request.Context(), name)
		if err != nil {
			slog.Error("failed to count collection", "collection", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query collections",
				},
			})
			return
		}
		counts[name] = n
	}

	backend := "memory"
	if cfg := config.GetConfig(); cfg != nil {
		backend = cfg.StoreBackend
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Database connected",
		"backend":     backend,
		"collections": counts,
	})
}
