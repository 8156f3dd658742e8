// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/propulsa/docview-backend/internal/catalog"
	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/upload"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// DocumentHandler handles catalog browsing and search operations
type DocumentHandler interface {
	HandleListDocuments(c echo.Context) error
	HandleGetDocument(c echo.Context) error
	HandleSearchDocuments(c echo.Context) error
	HandleTakeSearchResults(c echo.Context) error
}

// PreviewHandler handles preview session operations
type PreviewHandler interface {
	HandleStartPreview(c echo.Context) error
	HandleGetPreview(c echo.Context) error
	HandleGetPage(c echo.Context) error
	HandleNavigate(c echo.Context) error
	HandleFullscreenPage(c echo.Context) error
	HandleClosePreview(c echo.Context) error
}

// IngestHandler handles document submission
type IngestHandler interface {
	HandleSubmitDocument(c echo.Context) error
}

// CatalogClient defines the catalog operations the handlers need
// This allows mocking in tests
type CatalogClient interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	Search(ctx context.Context, q catalog.SearchQuery) ([]models.Document, error)
}

// DocumentSubmitter defines the submission pipeline the ingest handler needs
type DocumentSubmitter interface {
	Submit(ctx context.Context, req upload.SubmitRequest) (models.UploadOutcome, error)
}
