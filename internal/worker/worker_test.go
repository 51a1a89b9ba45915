package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/data/store"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	LocalCount   int32
	WebsiteCount int32
}

func (m *MockRagService) IngestLocalFiles(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.LocalCount, 1)
	j.Status = jobModel.JobStatusComplete
	j.JobPayload.ChunkCount = 3
	return j
}

func (m *MockRagService) IngestWebsite(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.WebsiteCount, 1)
	j.Status = jobModel.JobStatusComplete
	return j
}

func newTestPool(t *testing.T, rag *MockRagService) (*Pool, *job.Service, chan bool, *sync.WaitGroup) {
	t.Helper()
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.NewInMemoryJobStore(),
	}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}
	return NewPool(jobSvc, rag, stopChan, wg), jobSvc, stopChan, wg
}

func waitForWorkers(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop within timeout")
	}
}

func TestWorkerPool_Flow(t *testing.T) {
	mockRag := &MockRagService{}
	pool, jobSvc, stopChan, wg := newTestPool(t, mockRag)
	pool.Start()
	assert.Equal(t, int64(1), pool.WorkerCount())

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		assert.Eventually(t, func() bool { return pool.WorkerCount() == 2 }, time.Second, 10*time.Millisecond)
	})

	t.Run("Workers route jobs by type and save the result", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "local-1", JobType: jobModel.JobTypeIngestLocal}
		jobSvc.JobChannel <- jobModel.Job{Id: "web-1", JobType: jobModel.JobTypeIngestWebsite}

		assert.Eventually(t, func() bool {
			j, found := jobSvc.JobStore.GetJob(context.Background(), "web-1")
			return found && j.Status == jobModel.JobStatusComplete
		}, time.Second, 10*time.Millisecond)
		assert.Eventually(t, func() bool {
			j, found := jobSvc.JobStore.GetJob(context.Background(), "local-1")
			return found && j.Status == jobModel.JobStatusComplete && !j.EndTime.IsZero()
		}, time.Second, 10*time.Millisecond)

		assert.Equal(t, int32(1), atomic.LoadInt32(&mockRag.LocalCount))
		assert.Equal(t, int32(1), atomic.LoadInt32(&mockRag.WebsiteCount))
		j, _ := jobSvc.JobStore.GetJob(context.Background(), "local-1")
		assert.Equal(t, 3, j.JobPayload.ChunkCount)
	})

	t.Run("Unknown job type is marked as error", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "odd", JobType: "Query"}
		assert.Eventually(t, func() bool {
			j, found := jobSvc.JobStore.GetJob(context.Background(), "odd")
			return found && j.Status == jobModel.JobStatusError
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)
		waitForWorkers(t, wg)
		assert.Equal(t, int64(0), pool.WorkerCount())
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	pool, _, stopChan, wg := newTestPool(t, &MockRagService{})
	pool.idleTimeout = 20 * time.Millisecond
	pool.minWorkers = 1

	pool.createWorker()
	pool.createWorker()
	pool.createWorker()
	require.Equal(t, int64(3), pool.WorkerCount())

	// idle workers retire down to the minimum and no further
	assert.Eventually(t, func() bool { return pool.WorkerCount() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), pool.WorkerCount())

	close(stopChan)
	waitForWorkers(t, wg)
	assert.Equal(t, int64(0), pool.WorkerCount())
}
