package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coachhub-backend/internal/config"
	"coachhub-backend/internal/domains/importer"
	"coachhub-backend/internal/shared/response"
)

type ImportHandler struct {
	service importer.Service
	cfg     config.ImportConfig
}

func NewImportHandler(svc importer.Service, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{
		service: svc,
		cfg:     cfg,
	}
}

// BulkImport - POST /v1/clients/bulk-import
// Accepts a multipart "file" field. Small files run inline and return the
// report directly; larger files are queued and a job reference comes back
// with 202.
func (h *ImportHandler) BulkImport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "multipart field 'file' is required")
		return
	}

	if fileHeader.Size > h.cfg.MaxUploadBytes {
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, "IMPORT_FILE_TOO_LARGE", importer.ErrFileTooLarge.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "could not open uploaded file")
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		response.InternalServerError(c, "could not read uploaded file")
		return
	}
	if len(fileBytes) == 0 {
		response.BadRequest(c, importer.ErrEmptyFile.Error())
		return
	}

	if int64(len(fileBytes)) > h.cfg.AsyncFileBytes {
		job, err := h.service.EnqueueImport(c.Request.Context(), fileBytes, fileHeader.Filename)
		if err != nil {
			response.ErrorResponse(c, importer.GetHTTPStatusCode(err), "IMPORT_ENQUEUE_FAILED", err.Error())
			return
		}
		response.Success(c, http.StatusAccepted, importer.ToJobResponse(job, 0))
		return
	}

	report, err := h.service.ImportSync(c.Request.Context(), fileBytes, fileHeader.Filename)
	if err != nil {
		response.ErrorResponse(c, importer.GetHTTPStatusCode(err), "IMPORT_PARSE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, importer.ToReportResponse(report))
}

// GetJob - GET /v1/imports/:id
func (h *ImportHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, importer.ErrInvalidJobID.Error())
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, importer.GetHTTPStatusCode(err), "IMPORT_JOB_GET_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, job)
}
