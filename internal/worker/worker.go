package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/job"
	"github.com/niexiaoning/deep-searcher/internal/metrics"
	"github.com/niexiaoning/deep-searcher/internal/rag"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

// Pool is an elastic set of workers reading the job channel. The dispatcher
// adds a worker per signal up to config.MaxWorkerCount; a worker idle for
// config.IdleWorkerTimeout retires while more than minWorkers remain.
type Pool struct {
	jobService         *job.Service
	ragService         rag.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	minWorkers         int64
	maxWorkers         int64
	idleTimeout        time.Duration
	logger             *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) *Pool {
	return &Pool{
		jobService:        jobService,
		ragService:        ragService,
		stopWorkerChannel: stopWorkerChan,
		workerWaitGroup:   waitGroup,
		minWorkers:        config.MinWorkerCount,
		maxWorkers:        config.MaxWorkerCount,
		idleTimeout:       config.IdleWorkerTimeout,
		logger:            logger_i.NewLogger("WorkerPool"),
	}
}

// Start launches the first worker and the dispatcher.
func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	p.createWorker()
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case _, ok := <-p.jobService.DispatcherChannel:
			if !ok {
				return
			}
			if p.WorkerCount() < p.maxWorkers {
				p.logger.Info("Creating new worker", "WorkerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stopWorkerChannel:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stopWorkerChannel:
			p.removeWorker("Stop worker signal received", true)
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout", false)
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire reserves the retirement so two idle workers cannot both drop
// the pool below minWorkers.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.currentWorkerCount)
		if n <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, n, n-1) {
			return true
		}
	}
}
