package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
	"github.com/noah-isme/hallticket-api/pkg/response"
)

type rosterManager interface {
	Import(ctx context.Context, req dto.RosterImportRequest, actorID string) (*dto.RosterImportResponse, error)
	Get(ctx context.Context, id string) (*models.Roster, error)
	List(ctx context.Context, filter models.RosterFilter) (*dto.RosterListResponse, error)
	Delete(ctx context.Context, id string) error
	ApplySchedule(ctx context.Context, id string, req dto.ScheduleApplyRequest) (*models.Roster, error)
	ExportCSV(ctx context.Context, id string) ([]byte, string, error)
}

// RosterHandler exposes roster import and management endpoints.
type RosterHandler struct {
	service rosterManager
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc rosterManager) *RosterHandler {
	return &RosterHandler{service: svc}
}

// Import godoc
// @Summary Import a roster from tabular rows
// @Description Resolves headers fuzzily, skips rows without identifier or name
// @Tags Rosters
// @Accept json
// @Produce json
// @Param payload body dto.RosterImportRequest true "Import payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rosters/import [post]
func (h *RosterHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RosterImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}

	res, err := h.service.Import(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Get godoc
// @Summary Get a saved roster
// @Tags Rosters
// @Produce json
// @Param id path string true "Roster ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rosters/{id} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	roster, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// List godoc
// @Summary List saved rosters
// @Tags Rosters
// @Produce json
// @Param kind query string false "Roster kind"
// @Param search query string false "Name search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rosters [get]
func (h *RosterHandler) List(c *gin.Context) {
	filter := models.RosterFilter{
		Search: c.Query("search"),
	}
	if raw := c.Query("kind"); raw != "" {
		kind := ticket.RosterKind(raw)
		if !kind.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown roster kind"))
			return
		}
		filter.Kind = &kind
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res.Rosters, &res.Pagination)
}

// Delete godoc
// @Summary Delete a saved roster
// @Tags Rosters
// @Param id path string true "Roster ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rosters/{id} [delete]
func (h *RosterHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApplySchedule godoc
// @Summary Overlay a subject schedule onto a roster
// @Description Entries map onto each student's subjects by position
// @Tags Rosters
// @Accept json
// @Produce json
// @Param id path string true "Roster ID"
// @Param payload body dto.ScheduleApplyRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rosters/{id}/schedule [post]
func (h *RosterHandler) ApplySchedule(c *gin.Context) {
	var req dto.ScheduleApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}

	roster, err := h.service.ApplySchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// ExportCSV godoc
// @Summary Export a roster as CSV
// @Tags Rosters
// @Produce text/csv
// @Param id path string true "Roster ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /rosters/{id}/export [get]
func (h *RosterHandler) ExportCSV(c *gin.Context) {
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
