package worker

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	jobmodel "github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/metrics"
)

func (p *Pool) executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()
	log := p.logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	job.Status = jobmodel.JobStatusRunning
	p.saveJobState(ctx, job)

	switch job.JobType {
	case jobmodel.JobTypeIngestLocal:
		job = p.ragService.IngestLocalFiles(ctx, job)
	case jobmodel.JobTypeIngestWebsite:
		job = p.ragService.IngestWebsite(ctx, job)
	default:
		log.Error("Unknown job type", "type", job.JobType)
		job.Status = jobmodel.JobStatusError
		job.CurrentStep = jobmodel.Error
		job.Error = jobmodel.JobError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("unknown job type %q", job.JobType),
		}
	}

	job.EndTime = time.Now()
	// the job context may have expired, the final state must still be saved
	saveCtx, saveCancel := context.WithTimeout(ctxTrace, config.JobStoreSaveTimeout)
	defer saveCancel()
	p.saveJobState(saveCtx, job)
	log.Info("Job finished", "status", job.Status, "duration", time.Since(start))
}

// removeWorker releases a worker. Idle retirement has already lowered the
// count in tryRetire.
func (p *Pool) removeWorker(reason string, decrement bool) {
	if decrement {
		atomic.AddInt64(&p.currentWorkerCount, -1)
	}
	p.workerWaitGroup.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
}

func (p *Pool) saveJobState(ctx context.Context, job jobmodel.Job) {
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.Error("Failed to update job status", "jobId", job.Id, "err", err)
	}
}
