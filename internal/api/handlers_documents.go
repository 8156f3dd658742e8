// handlers_documents.go - Catalog browsing and search handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/propulsa/docview-backend/internal/catalog"
)

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	catalog CatalogClient
	handoff *catalog.Handoff
}

// NewDocumentHandler creates a new document handler instance
func NewDocumentHandler(client CatalogClient, handoff *catalog.Handoff) DocumentHandler {
	return &DocumentHandlerImpl{
		catalog: client,
		handoff: handoff,
	}
}

// HandleListDocuments proxies the full catalog listing
func (h *DocumentHandlerImpl) HandleListDocuments(c echo.Context) error {
	docs, err := h.catalog.ListDocuments(c.Request().Context())
	if err != nil {
		return NewBadGatewayError("could not reach the documents service", err)
	}
	return c.JSON(http.StatusOK, docs)
}

// HandleGetDocument fetches a single catalog record
func (h *DocumentHandlerImpl) HandleGetDocument(c echo.Context) error {
	id := c.Param("id")
	doc, err := h.catalog.GetDocument(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return NewNotFoundError("document", id)
		}
		return NewBadGatewayError("could not reach the documents service", err)
	}
	return c.JSON(http.StatusOK, doc)
}

// HandleSearchDocuments runs a catalog search and stashes the results
// for the results page to pick up
func (h *DocumentHandlerImpl) HandleSearchDocuments(c echo.Context) error {
	var query catalog.SearchQuery
	if err := c.Bind(&query); err != nil {
		return NewBadRequestError("invalid search query", err)
	}

	docs, err := h.catalog.Search(c.Request().Context(), query)
	if err != nil {
		return NewBadGatewayError("search is currently unavailable", err)
	}

	if err := h.handoff.Put(docs); err != nil {
		return NewInternalError("could not stash search results", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(docs),
		"stashed": true,
	})
}

// HandleTakeSearchResults returns the stashed search results and clears
// them. A second read finds nothing.
func (h *DocumentHandlerImpl) HandleTakeSearchResults(c echo.Context) error {
	docs, ok, err := h.handoff.Take()
	if err != nil {
		return NewInternalError("could not read stashed search results", err)
	}
	if !ok {
		return NewNotFoundError("search results", "latest")
	}
	return c.JSON(http.StatusOK, docs)
}
