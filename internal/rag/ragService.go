package rag

import (
	"context"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/metrics"
	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

/*
Service is the only thing the worker pool sees. It turns a queued job into a
pipeline call and the pipeline result back into the job.

The pipeline sits behind the small Ingester interface so tests can swap it for
a mock without building embedders or stores.
*/

type Service interface {
	IngestLocalFiles(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestWebsite(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Ingester is satisfied by *ingest.Pipeline.
type Ingester interface {
	LoadFromLocalFiles(ctx context.Context, paths []string, collectionName, collectionDescription string) (ingest.Result, error)
	LoadFromWebsite(ctx context.Context, urls []string, collectionName, collectionDescription string) (ingest.Result, error)
}

type service struct {
	ingester Ingester
	logger   *logger_i.Logger
}

func NewService(ingester Ingester) Service {
	return &service{
		ingester: ingester,
		logger:   logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) IngestLocalFiles(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.jobLogger(ctx, job)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("local_ingestion", time.Since(start)) }()
	if job.JobPayload.RemoveAfterIngest {
		defer removeUploads(job.JobPayload.Paths, log)
	}

	job = logOutput(job, jobModel.IngestInit, log)
	res, err := s.ingester.LoadFromLocalFiles(ctx, job.JobPayload.Paths, job.JobPayload.CollectionName, job.JobPayload.CollectionDescription)
	if err != nil {
		return s.jobError(job, err, "LOCAL_INGESTION_FAILURE")
	}
	return returnOutput(job, res)
}

func (s *service) IngestWebsite(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.jobLogger(ctx, job)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("website_ingestion", time.Since(start)) }()

	job = logOutput(job, jobModel.IngestInit, log)
	res, err := s.ingester.LoadFromWebsite(ctx, job.JobPayload.URLs, job.JobPayload.CollectionName, job.JobPayload.CollectionDescription)
	if err != nil {
		return s.jobError(job, err, "WEBSITE_INGESTION_FAILURE")
	}
	return returnOutput(job, res)
}

func (s *service) jobLogger(ctx context.Context, job jobModel.Job) *logger_i.Logger {
	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return s.logger.With("traceId", traceId, "JobId", job.Id)
}
