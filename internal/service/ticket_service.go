package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hallticket-api/internal/dto"
	"github.com/noah-isme/hallticket-api/internal/models"
	"github.com/noah-isme/hallticket-api/internal/repository"
	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
	"github.com/noah-isme/hallticket-api/pkg/jobs"
	"github.com/noah-isme/hallticket-api/pkg/storage"
)

type generationJobStore interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	GetByID(ctx context.Context, id string) (*models.GenerationJob, error)
	Update(ctx context.Context, id string, params repository.UpdateGenerationJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.GenerationJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.GenerationJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type statusCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type assetProvider interface {
	PhotoLookup() ticket.PhotoLookup
	LogoLookup() ticket.LogoLookup
}

type generationObserver interface {
	ObserveGeneration(pages int, duration time.Duration)
	RecordCacheOperation(hit bool, duration time.Duration)
}

// TicketServiceConfig governs job result retention and caching.
type TicketServiceConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	JobStatusTTL    time.Duration
	MaxRetries      int
}

// TicketService orchestrates document generation, both synchronous renders
// and queued jobs over saved rosters.
type TicketService struct {
	rosters   rosterStore
	jobsRepo  generationJobStore
	queue     jobDispatcher
	storage   fileStorage
	signer    *storage.SignedURLSigner
	cache     statusCache
	assets    assetProvider
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TicketServiceConfig
}

// TicketDownload aggregates resolved download data.
type TicketDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// NewTicketService constructs the ticket service.
func NewTicketService(rosters rosterStore, jobsRepo generationJobStore, queue jobDispatcher, store fileStorage, signer *storage.SignedURLSigner, cache statusCache, assets assetProvider, metrics generationObserver, validate *validator.Validate, logger *zap.Logger, cfg TicketServiceConfig) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.JobStatusTTL <= 0 {
		cfg.JobStatusTTL = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &TicketService{
		rosters:   rosters,
		jobsRepo:  jobsRepo,
		queue:     queue,
		storage:   store,
		signer:    signer,
		cache:     cache,
		assets:    assets,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetQueue attaches the dispatcher after construction. The queue's worker
// needs the service, so the two are wired in two steps at startup.
func (s *TicketService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Presets exposes the built-in customization presets.
func (s *TicketService) Presets() []ticket.Preset {
	return ticket.BuiltinPresets()
}

// Generate renders a document synchronously from either a saved roster or an
// inline student list.
func (s *TicketService) Generate(ctx context.Context, req dto.GenerateRequest) (*ticket.Document, error) {
	students := req.Students
	kind := req.Kind
	if req.RosterID != "" {
		roster, err := s.loadRoster(ctx, req.RosterID)
		if err != nil {
			return nil, err
		}
		students = roster.Students
		if !kind.Valid() {
			kind = roster.Kind
		}
	}
	return s.render(ctx, students, kind, req.Mode, req.Metadata, req.Custom)
}

// Preview renders a single-sample document through the production path so
// what the caller sees is exactly what a real run produces.
func (s *TicketService) Preview(ctx context.Context, req dto.PreviewRequest) (*ticket.Document, error) {
	gc := ticket.GenerationContext{
		Kind:     req.Kind,
		Metadata: req.Metadata,
		Custom:   req.Custom,
		Mode:     req.Mode,
		Photos:   s.assets.PhotoLookup(),
		Logos:    s.assets.LogoLookup(),
	}
	start := time.Now()
	doc, err := ticket.Preview(ctx, gc)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	s.observe(doc, start)
	return doc, nil
}

// CreateJob validates the request, persists the job and enqueues processing.
func (s *TicketService) CreateJob(ctx context.Context, req dto.JobRequest, actorID string) (*dto.JobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	roster, err := s.loadRoster(ctx, req.RosterID)
	if err != nil {
		return nil, err
	}
	if len(roster.Students) == 0 {
		return nil, appErrors.ErrEmptyRoster
	}

	job := &models.GenerationJob{
		RosterID: roster.ID,
		Params: models.JobParams{
			Mode:     req.Mode,
			Kind:     roster.Kind,
			Metadata: req.Metadata,
			Custom:   req.Custom,
		},
		Status:    models.JobStatusQueued,
		Progress:  0,
		CreatedBy: actorID,
	}
	if err := s.jobsRepo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create generation job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "generation"}); err != nil {
		status := models.JobStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.jobsRepo.Update(ctx, job.ID, repository.UpdateGenerationJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation job")
	}
	return &dto.JobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetJobStatus exposes job metadata to clients. Finished and failed rows are
// served from a short-lived cache to absorb status polling.
func (s *TicketService) GetJobStatus(ctx context.Context, id string) (*dto.JobStatusResponse, error) {
	cacheKey := "jobstatus:" + id
	if s.cache != nil {
		var cached dto.JobStatusResponse
		lookup := time.Now()
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true, time.Since(lookup))
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, time.Since(lookup))
		}
	}

	job, err := s.jobsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrJobNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation job")
	}

	resp := &dto.JobStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		PageCount: job.PageCount,
	}
	if job.ResultURL != nil {
		resp.ResultURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}

	if s.cache != nil && (job.Status == models.JobStatusFinished || job.Status == models.JobStatusFailed) {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cfg.JobStatusTTL); err != nil {
			s.logger.Sugar().Warnw("failed to cache job status", "job_id", id, "error", err)
		}
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored document.
func (s *TicketService) ResolveDownload(ctx context.Context, token string) (*TicketDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.jobsRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrJobNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.JobStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "document not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document file")
	}
	return &TicketDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs (e.g. after process restart).
func (s *TicketService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.jobsRepo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued generation jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "generation"}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired documents periodically.
func (s *TicketService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *TicketService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		finished, err := s.jobsRepo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		if len(finished) == 0 {
			break
		}
		for _, job := range finished {
			if job.ResultURL == nil {
				continue
			}
			token := extractToken(*job.ResultURL)
			if token == "" {
				continue
			}
			_, relPath, _, err := s.signer.Parse(token, true)
			if err != nil {
				continue
			}
			if err := s.storage.Delete(relPath); err != nil {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
		}
		if len(finished) < 100 {
			break
		}
	}
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *TicketService) loadRoster(ctx context.Context, id string) (*models.Roster, error) {
	roster, err := s.rosters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRosterNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}

func (s *TicketService) render(ctx context.Context, students []ticket.Student, kind ticket.RosterKind, mode ticket.Mode, meta ticket.ExamMetadata, custom ticket.Customization) (*ticket.Document, error) {
	gc := ticket.GenerationContext{
		Roster:   students,
		Kind:     kind,
		Metadata: meta,
		Custom:   custom,
		Mode:     mode,
		Photos:   s.assets.PhotoLookup(),
		Logos:    s.assets.LogoLookup(),
	}
	start := time.Now()
	doc, err := ticket.Generate(ctx, gc)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	s.observe(doc, start)
	return doc, nil
}

func (s *TicketService) observe(doc *ticket.Document, start time.Time) {
	if s.metrics == nil || doc == nil {
		return
	}
	s.metrics.ObserveGeneration(doc.Pages, time.Since(start))
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// GenerationWorker bridges queue jobs to the composer and file storage.
type GenerationWorker struct {
	service    *TicketService
	maxRetries int
	logger     *zap.Logger
}

// NewGenerationWorker constructs a worker.
func NewGenerationWorker(service *TicketService, maxRetries int, logger *zap.Logger) *GenerationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &GenerationWorker{service: service, maxRetries: maxRetries, logger: logger}
}

// Handle processes one queued generation job end to end.
func (w *GenerationWorker) Handle(ctx context.Context, job jobs.Job) error {
	s := w.service
	record, err := s.jobsRepo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.JobStatusProcessing
	progress := 10
	if err := s.jobsRepo.Update(ctx, job.ID, repository.UpdateGenerationJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "jobstatus:"+job.ID)
	}

	genErr := w.process(ctx, job.ID, record)
	if genErr == nil {
		return nil
	}

	msg := genErr.Error()
	if job.Attempt >= w.maxRetries {
		failed := models.JobStatusFailed
		progress = 100
		now := time.Now().UTC()
		if updateErr := s.jobsRepo.Update(ctx, job.ID, repository.UpdateGenerationJobParams{
			Status:       &failed,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		}); updateErr != nil {
			w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
		}
	} else {
		queued := models.JobStatusQueued
		reset := 0
		if updateErr := s.jobsRepo.Update(ctx, job.ID, repository.UpdateGenerationJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
		}
	}
	return genErr
}

func (w *GenerationWorker) process(ctx context.Context, jobID string, record *models.GenerationJob) error {
	s := w.service
	roster, err := s.loadRoster(ctx, record.RosterID)
	if err != nil {
		return err
	}
	doc, err := s.render(ctx, roster.Students, record.Params.Kind, record.Params.Mode, record.Params.Metadata, record.Params.Custom)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("halltickets_%s_%s.pdf", record.RosterID, time.Now().UTC().Format("20060102_150405"))
	relPath, err := s.storage.Save(filename, doc.Bytes)
	if err != nil {
		return err
	}
	token, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/tickets/download/%s", prefix, token)

	finished := models.JobStatusFinished
	progress := 100
	now := time.Now().UTC()
	pages := doc.Pages
	clear := ""
	if err := s.jobsRepo.Update(ctx, jobID, repository.UpdateGenerationJobParams{
		Status:       &finished,
		Progress:     &progress,
		PageCount:    &pages,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", jobID, "error", err)
		return err
	}
	if len(doc.Warnings) > 0 {
		w.logger.Sugar().Infow("generation finished with warnings", "job_id", jobID, "warnings", len(doc.Warnings))
	}
	return nil
}
