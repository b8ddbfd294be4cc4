package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sivanlg/homeradar/internal/middleware"
	"github.com/sivanlg/homeradar/internal/pkg/response"
)

type RouterDeps struct {
	Search   *SearchHandler
	Segments *SegmentHandler
	Ads      *AdHandler
	Ingest   *IngestHandler
	Archive  *ArchiveHandler

	// WriteLimitWindow throttles the endpoints that launch scrapes or
	// embedding calls. Zero disables the limiter.
	WriteLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", healthCheck)

	api.POST("/search", deps.Search.Search)

	api.GET("/segments", deps.Segments.List)
	api.GET("/ads/:id", deps.Ads.Get)
	api.GET("/ads/:id/history", deps.Ads.History)
	api.GET("/archive/:key", deps.Archive.Get)

	writeGroup := api.Group("")
	writeGroup.Use(middleware.RateLimit(deps.WriteLimitWindow))
	writeGroup.POST("/segments", deps.Segments.Create)
	writeGroup.POST("/ingest", deps.Ingest.IngestFile)
	writeGroup.PUT("/ads/:id/status", deps.Ads.UpdateStatus)
}

func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
