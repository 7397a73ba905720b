package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Job is one unit of asynchronous work.
type Job func(ctx context.Context) error

// WorkingPool runs fire-and-forget jobs on a fixed set of workers. Used
// for invalidation event publishing so pricing writes never block on the
// broker.
type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// Submit enqueues a job without blocking. When the queue is full the job
// is dropped; delivery here is best-effort by contract.
func (p *WorkingPool) Submit(job Job) bool {
	select {
	case p.jobChan <- job:
		return true
	default:
		slog.Warn("[WorkingPool] queue full, dropping job")
		return false
	}
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup

	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()

	slog.Info("[WorkingPool] Shutdown signaled. Closing job channel.")
	close(p.jobChan)

	workerWg.Wait()
	slog.Info("[WorkingPool] All workers stopped.")
}

// worker is the internal goroutine for a single worker
func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				slog.Info("[WorkingPool] Job channel closed. Exiting.", "worker", id)
				return
			}
			p.safeExecution(ctx, job, id)
		case <-ctx.Done():
			slog.Info("[WorkingPool] Context canceled. Exiting.", "worker", id)
			return
		}
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[WorkingPool] Panic recovered in job", "worker", workerID, "panic", r)
		}
	}()

	if err := job(ctx); err != nil {
		slog.Error("[WorkingPool] Error executing job", "worker", workerID, "error", err)
	}
}
