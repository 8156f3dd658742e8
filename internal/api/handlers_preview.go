// handlers_preview.go - Preview session handlers
package api

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/propulsa/docview-backend/internal/catalog"
	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/preview"
)

// PreviewHandlerImpl implements the PreviewHandler interface
type PreviewHandlerImpl struct {
	manager *preview.Manager
	catalog CatalogClient
}

// NewPreviewHandler creates a new preview handler instance
func NewPreviewHandler(manager *preview.Manager, client CatalogClient) PreviewHandler {
	return &PreviewHandlerImpl{
		manager: manager,
		catalog: client,
	}
}

type startPreviewRequest struct {
	DocumentID string `json:"documentId"`
	URL        string `json:"url"`
	Name       string `json:"name"`
}

// HandleStartPreview resolves the document and starts a render session.
// Rendering happens in the background; poll the session for progress.
func (h *PreviewHandlerImpl) HandleStartPreview(c echo.Context) error {
	var req startPreviewRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	var ref models.DocumentRef
	switch {
	case req.DocumentID != "":
		doc, err := h.catalog.GetDocument(c.Request().Context(), req.DocumentID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return NewNotFoundError("document", req.DocumentID)
			}
			return NewBadGatewayError("could not reach the documents service", err)
		}
		ref = doc.Ref()
	case req.URL != "":
		ref = models.DocumentRef{
			StorageURL:  req.URL,
			DisplayName: req.Name,
			MimeHint:    strings.TrimPrefix(filepath.Ext(req.URL), "."),
		}
	default:
		return NewBadRequestError("either documentId or url is required", nil)
	}

	session := h.manager.StartPreview(ref)
	return c.JSON(http.StatusAccepted, session)
}

// HandleGetPreview returns the current session snapshot
func (h *PreviewHandlerImpl) HandleGetPreview(c echo.Context) error {
	id := c.Param("sessionId")
	session, ok := h.manager.GetSession(id)
	if !ok {
		return NewNotFoundError("preview session", id)
	}
	return c.JSON(http.StatusOK, session)
}

// HandleGetPage serves one rendered page as PNG. An optional width query
// parameter re-renders at that width; without it the inline surface is
// served as-is.
func (h *PreviewHandlerImpl) HandleGetPage(c echo.Context) error {
	id := c.Param("sessionId")
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		return NewBadRequestError("invalid page number", err)
	}

	width := 0.0
	if w := c.QueryParam("width"); w != "" {
		width, err = strconv.ParseFloat(w, 64)
		if err != nil {
			return NewBadRequestError("invalid width", err)
		}
	}

	surface, err := h.manager.PageSurface(id, page, width)
	if err != nil {
		if errors.Is(err, preview.ErrSessionNotFound) {
			return NewNotFoundError("preview session", id)
		}
		return NewBadRequestError("page is not available", err)
	}

	return servePNG(c, surface)
}

type navigateRequest struct {
	Delta int `json:"delta"`
}

// HandleNavigate moves the session's current page by a signed delta.
// Out-of-range moves clamp; the resulting page is always returned.
func (h *PreviewHandlerImpl) HandleNavigate(c echo.Context) error {
	id := c.Param("sessionId")

	var req navigateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	page, ok := h.manager.Navigate(id, req.Delta)
	if !ok {
		return NewNotFoundError("preview session", id)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"currentPage": page,
	})
}

// HandleFullscreenPage serves one page rendered at overlay fidelity. The
// width query parameter is the overlay container width; the page scale
// is boosted beyond fit-to-width and capped.
func (h *PreviewHandlerImpl) HandleFullscreenPage(c echo.Context) error {
	id := c.Param("sessionId")
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		return NewBadRequestError("invalid page number", err)
	}

	width := 0.0
	if w := c.QueryParam("width"); w != "" {
		width, err = strconv.ParseFloat(w, 64)
		if err != nil {
			return NewBadRequestError("invalid width", err)
		}
	}

	surface, err := h.manager.FullscreenSurface(c.Request().Context(), id, page, width)
	if err != nil {
		if errors.Is(err, preview.ErrSessionNotFound) {
			return NewNotFoundError("preview session", id)
		}
		return NewBadRequestError("page is not available", err)
	}

	return servePNG(c, surface)
}

// HandleClosePreview releases the session and its document handle
func (h *PreviewHandlerImpl) HandleClosePreview(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.manager.CloseSession(id) {
		return NewNotFoundError("preview session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

func servePNG(c echo.Context, surface *preview.Surface) error {
	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf); err != nil {
		return NewInternalError("failed to encode page", err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
