// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/propulsa/docview-backend/internal/catalog"
	"github.com/propulsa/docview-backend/internal/preview"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Catalog    CatalogClient
	Handoff    *catalog.Handoff
	PreviewMgr *preview.Manager
	Pipeline   DocumentSubmitter
	Hub        *NotificationHub
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health        HealthHandler
	Documents     DocumentHandler
	Preview       PreviewHandler
	Ingest        IngestHandler
	Notifications *NotificationHub
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:        NewHealthHandler(deps.Version),
		Documents:     NewDocumentHandler(deps.Catalog, deps.Handoff),
		Preview:       NewPreviewHandler(deps.PreviewMgr, deps.Catalog),
		Ingest:        NewIngestHandler(deps.Pipeline),
		Notifications: deps.Hub,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Catalog routes
	docGroup := e.Group("/api/documents")
	docGroup.GET("", handlers.Documents.HandleListDocuments)
	docGroup.POST("/search", handlers.Documents.HandleSearchDocuments)
	docGroup.GET("/search/results", handlers.Documents.HandleTakeSearchResults)
	docGroup.GET("/:id", handlers.Documents.HandleGetDocument)

	// Preview session routes
	previewGroup := e.Group("/api/preview")
	previewGroup.POST("", handlers.Preview.HandleStartPreview)
	previewGroup.GET("/:sessionId", handlers.Preview.HandleGetPreview)
	previewGroup.GET("/:sessionId/pages/:page", handlers.Preview.HandleGetPage)
	previewGroup.POST("/:sessionId/navigate", handlers.Preview.HandleNavigate)
	previewGroup.GET("/:sessionId/fullscreen/:page", handlers.Preview.HandleFullscreenPage)
	previewGroup.DELETE("/:sessionId", handlers.Preview.HandleClosePreview)

	// Document submission
	e.POST("/api/upload", handlers.Ingest.HandleSubmitDocument)

	// Notification stream
	if handlers.Notifications != nil {
		e.GET("/api/ws/notifications", handlers.Notifications.HandleNotifications)
	}
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
