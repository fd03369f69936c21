package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/service"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
	"github.com/noah-isme/hallticket-api/pkg/response"
)

type ticketGenerator interface {
	Generate(ctx context.Context, req dto.GenerateRequest) (*ticket.Document, error)
	Preview(ctx context.Context, req dto.PreviewRequest) (*ticket.Document, error)
	CreateJob(ctx context.Context, req dto.JobRequest, actorID string) (*dto.JobResponse, error)
	GetJobStatus(ctx context.Context, id string) (*dto.JobStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.TicketDownload, error)
	Presets() []ticket.Preset
}

// TicketHandler exposes hall ticket generation endpoints.
type TicketHandler struct {
	service ticketGenerator
}

// NewTicketHandler constructs the handler.
func NewTicketHandler(svc ticketGenerator) *TicketHandler {
	return &TicketHandler{service: svc}
}

// Generate godoc
// @Summary Generate hall tickets synchronously
// @Description Render a PDF for a saved roster or an inline student list
// @Tags Tickets
// @Accept json
// @Produce application/pdf
// @Param payload body dto.GenerateRequest true "Generation payload"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /tickets/generate [post]
func (h *TicketHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	doc, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.servePDF(c, doc, "hall_tickets.pdf")
}

// Preview godoc
// @Summary Preview ticket layout
// @Description Render a single sample ticket with the supplied customization
// @Tags Tickets
// @Accept json
// @Produce application/pdf
// @Param payload body dto.PreviewRequest true "Preview payload"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /tickets/preview [post]
func (h *TicketHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}

	doc, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.servePDF(c, doc, "preview.pdf")
}

// CreateJob godoc
// @Summary Queue asynchronous generation
// @Tags Tickets
// @Accept json
// @Produce json
// @Param payload body dto.JobRequest true "Job payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tickets/jobs [post]
func (h *TicketHandler) CreateJob(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
		return
	}

	res, err := h.service.CreateJob(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, res, nil)
}

// JobStatus godoc
// @Summary Generation job status
// @Tags Tickets
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tickets/jobs/{id} [get]
func (h *TicketHandler) JobStatus(c *gin.Context) {
	res, err := h.service.GetJobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Download godoc
// @Summary Download generated document
// @Tags Tickets
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /tickets/download/{token} [get]
func (h *TicketHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Expires", download.ExpiresAt.UTC().Format(time.RFC1123))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		_ = c.Error(err)
	}
}

// Presets godoc
// @Summary Built-in customization presets
// @Tags Tickets
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tickets/presets [get]
func (h *TicketHandler) Presets(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Presets(), nil)
}

func (h *TicketHandler) servePDF(c *gin.Context, doc *ticket.Document, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Page-Count", fmt.Sprintf("%d", doc.Pages))
	if len(doc.Warnings) > 0 {
		c.Header("X-Warning-Count", fmt.Sprintf("%d", len(doc.Warnings)))
	}
	c.Data(http.StatusOK, "application/pdf", doc.Bytes)
}
