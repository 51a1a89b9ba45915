package rag

import (
	"errors"
	"net/http"
	"os"

	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
	"github.com/niexiaoning/deep-searcher/internal/rag/loader"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

func returnOutput(job jobModel.Job, res ingest.Result) jobModel.Job {
	job.JobPayload.CollectionName = res.Collection
	job.JobPayload.DocumentCount = res.Documents
	job.JobPayload.ChunkCount = res.Chunks
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("Ingest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string) jobModel.Job {
	s.logger.Error(message, "JobId", job.Id, "error", err)

	canRetry := isRetryable(err)
	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	if !canRetry {
		job.Error.Message = err.Error()
	}
	job.CurrentStep = jobModel.Error
	job.Status = jobModel.JobStatusError
	return job
}

// isRetryable is false for failures that repeat on every attempt.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, embedding.ErrUnsupportedModel),
		errors.Is(err, embedding.ErrConfiguration),
		errors.Is(err, loader.ErrUnsupportedFileType),
		errors.Is(err, ingest.ErrNoPaths),
		errors.Is(err, vectorDB.ErrInvalidDimension),
		errors.Is(err, vectorDB.ErrDimensionMismatch),
		errors.Is(err, vectorDB.ErrEmptyCollection),
		errors.Is(err, os.ErrNotExist):
		return false
	}
	return true
}

func removeUploads(paths []string, log *logger_i.Logger) {
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			log.Error("Error removing uploaded file", "path", p, "error", err)
		}
	}
}
