// handlers_ingest.go - Document submission handler
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/upload"
)

// IngestHandlerImpl implements the IngestHandler interface
type IngestHandlerImpl struct {
	pipeline DocumentSubmitter
}

// NewIngestHandler creates a new ingest handler instance
func NewIngestHandler(pipeline DocumentSubmitter) IngestHandler {
	return &IngestHandlerImpl{
		pipeline: pipeline,
	}
}

// HandleSubmitDocument accepts a multipart submission and runs it
// through the retrying pipeline. Validation failures are 400 and never
// reach the ingest service; exhausted retries are reported as 502 with
// the terminal outcome in the body.
func (h *IngestHandlerImpl) HandleSubmitDocument(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError("file", "no file provided")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewBadRequestError("could not open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewBadRequestError("could not read uploaded file", err)
	}

	req := upload.SubmitRequest{
		FileName:    fileHeader.Filename,
		Data:        data,
		Title:       c.FormValue("documentTitle"),
		Description: c.FormValue("documentDescription"),
	}

	outcome, err := h.pipeline.Submit(c.Request().Context(), req)
	if err != nil {
		var verr *upload.ValidationError
		if errors.As(err, &verr) {
			return NewValidationError(verr.Field, verr.Message)
		}
		return NewInternalError("submission failed", err)
	}

	switch outcome.Kind {
	case models.UploadAccepted:
		return c.JSON(http.StatusAccepted, outcome)
	case models.UploadCompleted:
		return c.JSON(http.StatusOK, outcome)
	default:
		return c.JSON(http.StatusBadGateway, outcome)
	}
}
