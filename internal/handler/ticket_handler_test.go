package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/middleware"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/service"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
)

type ticketServiceMock struct {
	doc         *ticket.Document
	docErr      error
	jobResp     *dto.JobResponse
	jobErr      error
	statusResp  *dto.JobStatusResponse
	statusErr   error
	download    *service.TicketDownload
	downloadErr error
}

func (m *ticketServiceMock) Generate(ctx context.Context, req dto.GenerateRequest) (*ticket.Document, error) {
	return m.doc, m.docErr
}

func (m *ticketServiceMock) Preview(ctx context.Context, req dto.PreviewRequest) (*ticket.Document, error) {
	return m.doc, m.docErr
}

func (m *ticketServiceMock) CreateJob(ctx context.Context, req dto.JobRequest, actorID string) (*dto.JobResponse, error) {
	return m.jobResp, m.jobErr
}

func (m *ticketServiceMock) GetJobStatus(ctx context.Context, id string) (*dto.JobStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *ticketServiceMock) ResolveDownload(ctx context.Context, token string) (*service.TicketDownload, error) {
	return m.download, m.downloadErr
}

func (m *ticketServiceMock) Presets() []ticket.Preset {
	return ticket.BuiltinPresets()
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestTicketHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{
		doc: &ticket.Document{Bytes: []byte("%PDF-1.4 test"), Pages: 2, Tickets: 3},
	}
	handler := NewTicketHandler(mockSvc)

	payload, _ := json.Marshal(dto.GenerateRequest{RosterID: "roster-1", Mode: ticket.ModePairedStudents})
	c, w := newGinContext(http.MethodPost, "/tickets/generate", payload)

	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Equal(t, "2", w.Header().Get("X-Page-Count"))
	require.Empty(t, w.Header().Get("X-Warning-Count"))
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestTicketHandlerGenerateSurfacesWarnings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{
		doc: &ticket.Document{
			Bytes:    []byte("%PDF-1.4 test"),
			Pages:    1,
			Tickets:  1,
			Warnings: []ticket.Warning{{Identifier: "1CR21CS001", Code: ticket.WarnPhotoEmbed}},
		},
	}
	handler := NewTicketHandler(mockSvc)

	payload, _ := json.Marshal(dto.GenerateRequest{RosterID: "roster-1"})
	c, w := newGinContext(http.MethodPost, "/tickets/generate", payload)

	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1", w.Header().Get("X-Warning-Count"))
}

func TestTicketHandlerGenerateEmptyRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{docErr: appErrors.ErrEmptyRoster}
	handler := NewTicketHandler(mockSvc)

	payload, _ := json.Marshal(dto.GenerateRequest{RosterID: "roster-1"})
	c, w := newGinContext(http.MethodPost, "/tickets/generate", payload)

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "EMPTY_ROSTER")
}

func TestTicketHandlerGenerateBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTicketHandler(&ticketServiceMock{})

	c, w := newGinContext(http.MethodPost, "/tickets/generate", []byte("{not json"))

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketHandlerPreview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{
		doc: &ticket.Document{Bytes: []byte("%PDF-1.4 preview"), Pages: 1, Tickets: 1},
	}
	handler := NewTicketHandler(mockSvc)

	payload, _ := json.Marshal(dto.PreviewRequest{Kind: ticket.KindCollege})
	c, w := newGinContext(http.MethodPost, "/tickets/preview", payload)

	handler.Preview(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "preview.pdf")
}

func TestTicketHandlerCreateJob(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{
		jobResp: &dto.JobResponse{ID: "job-1", Status: models.JobStatusQueued},
	}
	handler := NewTicketHandler(mockSvc)

	payload, _ := json.Marshal(dto.JobRequest{RosterID: "roster-1"})
	c, w := newGinContext(http.MethodPost, "/tickets/jobs", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.CreateJob(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), "job-1")
}

func TestTicketHandlerCreateJobRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTicketHandler(&ticketServiceMock{})

	payload, _ := json.Marshal(dto.JobRequest{RosterID: "roster-1"})
	c, w := newGinContext(http.MethodPost, "/tickets/jobs", payload)

	handler.CreateJob(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTicketHandlerJobStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{
		statusResp: &dto.JobStatusResponse{ID: "job-1", Status: models.JobStatusFinished, Progress: 100, PageCount: 4},
	}
	handler := NewTicketHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/tickets/jobs/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.JobStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FINISHED")
}

func TestTicketHandlerJobStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{statusErr: appErrors.ErrJobNotFound}
	handler := NewTicketHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/tickets/jobs/ghost", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.JobStatus(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTicketHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp("", "halltickets*.pdf")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	_, _ = file.WriteString("%PDF-1.4 stored")
	_, _ = file.Seek(0, 0)

	mockSvc := &ticketServiceMock{
		download: &service.TicketDownload{
			File:      file,
			Filename:  "halltickets_roster-1.pdf",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewTicketHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/tickets/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "halltickets_roster-1.pdf")
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestTicketHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &ticketServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}
	handler := NewTicketHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/tickets/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTicketHandlerPresets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTicketHandler(&ticketServiceMock{})

	c, w := newGinContext(http.MethodGet, "/tickets/presets", nil)

	handler.Presets(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "standard")
	require.Contains(t, w.Body.String(), "detailed")
}
