package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/repository"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
	"github.com/noah-isme/hallticket-api/pkg/jobs"
	"github.com/noah-isme/hallticket-api/pkg/storage"
)

type jobStoreStub struct {
	jobs       map[string]*models.GenerationJob
	getCalls   int
	listErr    error
	updateErrs []error
}

func newJobStoreStub() *jobStoreStub {
	return &jobStoreStub{jobs: map[string]*models.GenerationJob{}}
}

func (s *jobStoreStub) Create(_ context.Context, job *models.GenerationJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.CreatedAt = time.Now().UTC()
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *jobStoreStub) GetByID(_ context.Context, id string) (*models.GenerationJob, error) {
	s.getCalls++
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (s *jobStoreStub) Update(_ context.Context, id string, params repository.UpdateGenerationJobParams) error {
	if len(s.updateErrs) > 0 {
		err := s.updateErrs[0]
		s.updateErrs = s.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.PageCount != nil {
		job.PageCount = *params.PageCount
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (s *jobStoreStub) ListQueued(_ context.Context, limit int) ([]models.GenerationJob, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.GenerationJob
	for _, job := range s.jobs {
		if job.Status == models.JobStatusQueued && len(out) < limit {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *jobStoreStub) ListFinishedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.GenerationJob, error) {
	var out []models.GenerationJob
	for _, job := range s.jobs {
		if job.Status == models.JobStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *job)
		}
	}
	return out, nil
}

type dispatcherStub struct {
	enqueued []jobs.Job
	err      error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.enqueued = append(d.enqueued, job)
	return nil
}

type fileStorageStub struct {
	dir     string
	deleted []string
}

func (s *fileStorageStub) Save(filename string, data []byte) (string, error) {
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *fileStorageStub) Open(filename string) (*os.File, error) {
	return os.Open(filepath.Join(s.dir, filename))
}

func (s *fileStorageStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return os.Remove(filepath.Join(s.dir, filename))
}

func (s *fileStorageStub) CleanupOlderThan(time.Duration) ([]string, error) {
	return nil, nil
}

type cacheStub struct {
	values map[string][]byte
	sets   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: map[string][]byte{}}
}

func (c *cacheStub) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.sets++
	return nil
}

func (c *cacheStub) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

type assetStub struct{}

func (assetStub) PhotoLookup() ticket.PhotoLookup {
	return func(string) (ticket.ImageBytes, bool) { return ticket.ImageBytes{}, false }
}

func (assetStub) LogoLookup() ticket.LogoLookup {
	return func(ticket.LogoKind) (ticket.ImageBytes, bool) { return ticket.ImageBytes{}, false }
}

type observerStub struct {
	generations int
	cacheHits   int
	cacheMisses int
}

func (o *observerStub) ObserveGeneration(int, time.Duration) { o.generations++ }

func (o *observerStub) RecordCacheOperation(hit bool, _ time.Duration) {
	if hit {
		o.cacheHits++
	} else {
		o.cacheMisses++
	}
}

type ticketFixture struct {
	service  *TicketService
	rosters  *rosterStoreStub
	jobs     *jobStoreStub
	queue    *dispatcherStub
	storage  *fileStorageStub
	signer   *storage.SignedURLSigner
	cache    *cacheStub
	observer *observerStub
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		rosters:  newRosterStoreStub(),
		jobs:     newJobStoreStub(),
		queue:    &dispatcherStub{},
		storage:  &fileStorageStub{dir: t.TempDir()},
		signer:   storage.NewSignedURLSigner("test-secret", time.Hour),
		cache:    newCacheStub(),
		observer: &observerStub{},
	}
	f.service = NewTicketService(f.rosters, f.jobs, f.queue, f.storage, f.signer, f.cache, assetStub{}, f.observer, nil, nil, TicketServiceConfig{
		ResultTTL:  time.Hour,
		MaxRetries: 3,
	})
	return f
}

func rosterStudents(n int) []ticket.Student {
	out := make([]ticket.Student, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, ticket.Student{
			Identifier: fmt.Sprintf("1CR21CS%03d", i),
			Name:       fmt.Sprintf("Student %d", i),
			Subjects:   []ticket.Subject{{Name: "Mathematics", Code: "MAT101"}},
		})
	}
	return out
}

func TestTicketServiceGenerateInlineStudents(t *testing.T) {
	f := newTicketFixture(t)

	doc, err := f.service.Generate(context.Background(), dto.GenerateRequest{
		Students: rosterStudents(2),
		Kind:     ticket.KindCollege,
		Mode:     ticket.ModePairedStudents,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, 2, doc.Tickets)
	assert.Equal(t, 1, f.observer.generations)
}

func TestTicketServiceGenerateFromSavedRoster(t *testing.T) {
	f := newTicketFixture(t)
	roster := seedRoster(f.rosters, rosterStudents(3)...)

	doc, err := f.service.Generate(context.Background(), dto.GenerateRequest{
		RosterID: roster.ID,
		Mode:     ticket.ModeBulkSameStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Tickets)
}

func TestTicketServiceGenerateRosterNotFound(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.service.Generate(context.Background(), dto.GenerateRequest{RosterID: uuid.NewString()})
	require.ErrorIs(t, err, appErrors.ErrRosterNotFound)
}

func TestTicketServiceGenerateEmptyInlineRoster(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.service.Generate(context.Background(), dto.GenerateRequest{Kind: ticket.KindCollege})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyRoster.Code, appErrors.FromError(err).Code)
}

func TestTicketServicePreview(t *testing.T) {
	f := newTicketFixture(t)

	doc, err := f.service.Preview(context.Background(), dto.PreviewRequest{
		Kind:   ticket.KindSchool,
		Custom: ticket.Customization{PrimaryColor: "#7C3AED"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Tickets)
	assert.Equal(t, 1, doc.Pages)
}

func TestTicketServiceCreateJob(t *testing.T) {
	f := newTicketFixture(t)
	roster := seedRoster(f.rosters, rosterStudents(2)...)

	resp, err := f.service.CreateJob(context.Background(), dto.JobRequest{
		RosterID: roster.ID,
		Mode:     ticket.ModePairedStudents,
	}, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusQueued, resp.Status)
	assert.Equal(t, 0, resp.Progress)
	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, resp.ID, f.queue.enqueued[0].ID)
	assert.Equal(t, "generation", f.queue.enqueued[0].Type)

	stored := f.jobs.jobs[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, roster.ID, stored.RosterID)
	assert.Equal(t, roster.Kind, stored.Params.Kind)
	assert.Equal(t, "admin-1", stored.CreatedBy)
}

func TestTicketServiceCreateJobRequiresRosterID(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.service.CreateJob(context.Background(), dto.JobRequest{}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTicketServiceCreateJobEmptyRoster(t *testing.T) {
	f := newTicketFixture(t)
	roster := seedRoster(f.rosters)

	_, err := f.service.CreateJob(context.Background(), dto.JobRequest{RosterID: roster.ID}, "admin-1")
	require.ErrorIs(t, err, appErrors.ErrEmptyRoster)
}

func TestTicketServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	f := newTicketFixture(t)
	roster := seedRoster(f.rosters, rosterStudents(1)...)
	f.queue.err = errors.New("queue full")

	_, err := f.service.CreateJob(context.Background(), dto.JobRequest{RosterID: roster.ID}, "admin-1")
	require.Error(t, err)

	require.Len(t, f.jobs.jobs, 1)
	for _, job := range f.jobs.jobs {
		assert.Equal(t, models.JobStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
		assert.NotEmpty(t, *job.ErrorMessage)
	}
}

func TestTicketServiceGetJobStatusCachesTerminalStates(t *testing.T) {
	f := newTicketFixture(t)
	url := "/api/v1/tickets/download/token-1"
	job := &models.GenerationJob{
		ID:        uuid.NewString(),
		Status:    models.JobStatusFinished,
		Progress:  100,
		PageCount: 4,
		ResultURL: &url,
	}
	f.jobs.jobs[job.ID] = job

	resp, err := f.service.GetJobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFinished, resp.Status)
	assert.Equal(t, 4, resp.PageCount)
	require.NotNil(t, resp.ResultURL)
	assert.Equal(t, url, *resp.ResultURL)
	assert.Equal(t, 1, f.jobs.getCalls)
	assert.Equal(t, 1, f.observer.cacheMisses)

	// Second poll is absorbed by the cache.
	resp, err = f.service.GetJobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFinished, resp.Status)
	assert.Equal(t, 1, f.jobs.getCalls)
	assert.Equal(t, 1, f.observer.cacheHits)
}

func TestTicketServiceGetJobStatusDoesNotCacheInFlight(t *testing.T) {
	f := newTicketFixture(t)
	job := &models.GenerationJob{ID: uuid.NewString(), Status: models.JobStatusProcessing, Progress: 10}
	f.jobs.jobs[job.ID] = job

	_, err := f.service.GetJobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	_, err = f.service.GetJobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.jobs.getCalls)
	assert.Zero(t, f.cache.sets)
}

func TestTicketServiceGetJobStatusNotFound(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.service.GetJobStatus(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, appErrors.ErrJobNotFound)
}

func TestGenerationWorkerProcessesJob(t *testing.T) {
	f := newTicketFixture(t)
	roster := seedRoster(f.rosters, rosterStudents(2)...)
	job := &models.GenerationJob{
		ID:       uuid.NewString(),
		RosterID: roster.ID,
		Params:   models.JobParams{Mode: ticket.ModePairedStudents, Kind: roster.Kind},
		Status:   models.JobStatusQueued,
	}
	f.jobs.jobs[job.ID] = job

	worker := NewGenerationWorker(f.service, 3, nil)
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Type: "generation"}))

	stored := f.jobs.jobs[job.ID]
	assert.Equal(t, models.JobStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, 1, stored.PageCount)
	require.NotNil(t, stored.ResultURL)
	assert.True(t, strings.HasPrefix(*stored.ResultURL, "/api/v1/tickets/download/"))
	require.NotNil(t, stored.FinishedAt)

	// The published link resolves back to the stored document.
	token := (*stored.ResultURL)[strings.LastIndex(*stored.ResultURL, "/")+1:]
	download, err := f.service.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.True(t, strings.HasSuffix(download.Filename, ".pdf"))

	header := make([]byte, 5)
	_, err = download.File.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(header))
}

func TestGenerationWorkerRequeuesBeforeRetryLimit(t *testing.T) {
	f := newTicketFixture(t)
	job := &models.GenerationJob{
		ID:       uuid.NewString(),
		RosterID: uuid.NewString(), // roster missing, render will fail
		Status:   models.JobStatusQueued,
	}
	f.jobs.jobs[job.ID] = job

	worker := NewGenerationWorker(f.service, 3, nil)
	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0})
	require.Error(t, err)

	stored := f.jobs.jobs[job.ID]
	assert.Equal(t, models.JobStatusQueued, stored.Status)
	assert.Equal(t, 0, stored.Progress)
	require.NotNil(t, stored.ErrorMessage)
}

func TestGenerationWorkerExhaustedRetriesMarkFailed(t *testing.T) {
	f := newTicketFixture(t)
	job := &models.GenerationJob{
		ID:       uuid.NewString(),
		RosterID: uuid.NewString(),
		Status:   models.JobStatusQueued,
	}
	f.jobs.jobs[job.ID] = job

	worker := NewGenerationWorker(f.service, 2, nil)
	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2})
	require.Error(t, err)

	stored := f.jobs.jobs[job.ID]
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.FinishedAt)
}

func TestTicketServiceResolveDownloadRejectsBadToken(t *testing.T) {
	f := newTicketFixture(t)

	_, err := f.service.ResolveDownload(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestTicketServiceResolveDownloadRejectsUnfinishedJob(t *testing.T) {
	f := newTicketFixture(t)
	jobID := uuid.NewString()
	token, _, err := f.signer.Generate(jobID, "pending.pdf")
	require.NoError(t, err)
	url := "/api/v1/tickets/download/" + token
	f.jobs.jobs[jobID] = &models.GenerationJob{ID: jobID, Status: models.JobStatusProcessing, ResultURL: &url}

	_, err = f.service.ResolveDownload(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestTicketServiceRecoverPendingJobs(t *testing.T) {
	f := newTicketFixture(t)
	for i := 0; i < 2; i++ {
		id := uuid.NewString()
		f.jobs.jobs[id] = &models.GenerationJob{ID: id, Status: models.JobStatusQueued}
	}
	done := uuid.NewString()
	f.jobs.jobs[done] = &models.GenerationJob{ID: done, Status: models.JobStatusFinished}

	f.service.RecoverPendingJobs(context.Background())
	assert.Len(t, f.queue.enqueued, 2)
}

func TestTicketServiceCleanupExpired(t *testing.T) {
	f := newTicketFixture(t)

	relPath, err := f.storage.Save("halltickets_old.pdf", []byte("%PDF-1.4 stale"))
	require.NoError(t, err)
	jobID := uuid.NewString()
	token, _, err := f.signer.Generate(jobID, relPath)
	require.NoError(t, err)
	url := "/api/v1/tickets/download/" + token
	old := time.Now().Add(-48 * time.Hour)
	f.jobs.jobs[jobID] = &models.GenerationJob{
		ID:         jobID,
		Status:     models.JobStatusFinished,
		ResultURL:  &url,
		FinishedAt: &old,
	}

	f.service.cleanupExpired(context.Background())
	assert.Equal(t, []string{relPath}, f.storage.deleted)
}
