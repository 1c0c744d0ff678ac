package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cl "coachhub-backend/internal/domains/client"
	"coachhub-backend/internal/shared/response"
)

type ClientHandler struct {
	service cl.Service
}

func NewClientHandler(svc cl.Service) *ClientHandler {
	return &ClientHandler{
		service: svc,
	}
}

// Create - POST /v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req cl.CreateClientRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, cl.GetHTTPStatusCode(err), "CLIENT_CREATE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetByID - GET /v1/clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, cl.ErrInvalidClientID.Error())
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, cl.GetHTTPStatusCode(err), "CLIENT_GET_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// List - GET /v1/clients?search=&sort=&page=&limit=
func (h *ClientHandler) List(c *gin.Context) {
	var req cl.ListClientsRequest
	if err := c.BindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	clients, meta, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.ErrorResponse(c, cl.GetHTTPStatusCode(err), "CLIENT_LIST_FAILED", err.Error())
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, clients, &response.Meta{
		Page:  meta.Page,
		Limit: meta.PageSize,
		Total: int(meta.Total),
	})
}

// Update - PUT /v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, cl.ErrInvalidClientID.Error())
		return
	}

	var req cl.UpdateClientRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.ErrorResponse(c, cl.GetHTTPStatusCode(err), "CLIENT_UPDATE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Delete - DELETE /v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, cl.ErrInvalidClientID.Error())
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ErrorResponse(c, cl.GetHTTPStatusCode(err), "CLIENT_DELETE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Export - GET /v1/clients/export
// Streams the roster as an .xlsx download.
func (h *ClientHandler) Export(c *gin.Context) {
	var req cl.ListClientsRequest
	if err := c.BindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	f, err := h.service.ExportToExcel(c.Request.Context(), req)
	if err != nil {
		response.ErrorResponse(c, cl.GetHTTPStatusCode(err), "CLIENT_EXPORT_FAILED", err.Error())
		return
	}

	fileName := fmt.Sprintf("clients_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		response.InternalServerError(c, "failed to write export file")
	}
}
