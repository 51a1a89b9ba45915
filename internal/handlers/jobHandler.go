package handlers

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/job"
	"github.com/niexiaoning/deep-searcher/internal/metrics"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

// JobHandler turns accepted requests into queued jobs.
type JobHandler struct {
	service *job.Service
	logger  *logger_i.Logger
}

// ErrQueueFull is returned when the request ended before the job queue had room.
var ErrQueueFull = errors.New("job queue is full")

type newJobData struct {
	id             string
	traceId        string
	jobType        jobModel.JobType
	paths          []string
	urls           []string
	collection     string
	description    string
	removeUploaded bool
}

func NewJobHandler(jobService *job.Service) *JobHandler {
	h := &JobHandler{service: jobService, logger: logger_i.NewLogger("JobHandler")}
	h.logger.Info("Starting job handler")
	return h
}

func (h *JobHandler) CreateNewJob(ctx context.Context, newJob newJobData) error {
	log := h.logger.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new job", "type", newJob.jobType)

	_job := jobModel.Job{
		Id:          newJob.id,
		TraceId:     newJob.traceId,
		JobType:     newJob.jobType,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
		JobPayload: jobModel.JobPayload{
			Paths:                 newJob.paths,
			URLs:                  newJob.urls,
			CollectionName:        newJob.collection,
			CollectionDescription: newJob.description,
			RemoveAfterIngest:     newJob.removeUploaded,
		},
	}
	// status is visible before a worker picks the job up
	if err := h.service.JobStore.SaveJob(ctx, _job); err != nil {
		log.Error("Error saving queued job", "error", err)
	}

	enqueueCtx, cancel := context.WithTimeout(ctx, config.EnqueueTimeout)
	defer cancel()
	metrics.IncrementJobsInQueue()
	select {
	case h.service.JobChannel <- _job:
	case <-enqueueCtx.Done():
		metrics.DecrementJobsInQueue()
		log.Warn("Job queue full, giving up", "error", enqueueCtx.Err())
		h.failQueued(_job, log)
		return ErrQueueFull
	}
	log.Info("Created new job")

	// every ingest job asks for another worker, idle ones retire
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || isIngest(_job.JobType) {
		metrics.StartDispatcherSignalCount()
		select {
		case h.service.DispatcherChannel <- true:
		default:
			log.Debug("Dispatcher busy, signal dropped", "requestCount", accurateCount)
		}
	}
	return nil
}

// failQueued records a job that never reached a worker. ctx is already done,
// so the store gets a fresh one.
func (h *JobHandler) failQueued(j jobModel.Job, log *logger_i.Logger) {
	j.Status = jobModel.JobStatusError
	j.CurrentStep = jobModel.Error
	j.EndTime = time.Now()
	j.Error = jobModel.JobError{Code: 503, Message: ErrQueueFull.Error(), Retry: true}

	ctx, cancel := context.WithTimeout(context.Background(), config.JobStoreSaveTimeout)
	defer cancel()
	if err := h.service.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Error saving rejected job", "error", err)
	}
}

func (h *JobHandler) GetJobStatus(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		h.logger.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return h.service.JobStore.GetJob(ctx, id)
}

func isIngest(t jobModel.JobType) bool {
	return t == jobModel.JobTypeIngestLocal || t == jobModel.JobTypeIngestWebsite
}
