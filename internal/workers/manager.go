package workers

import (
	"context"
	"sync"

	"github.com/alimgiray/crewledger/pkg/logger"
)

// WorkerManager starts and stops the background workers
type WorkerManager struct {
	workers []Worker
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerManager creates a new worker manager for workers
func NewWorkerManager(workers ...Worker) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartAll starts every worker in its own goroutine
func (wm *WorkerManager) StartAll() error {
	for _, worker := range wm.workers {
		wm.startWorker(worker)
	}

	logger.Infof("Started %d background workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers and waits for them to return
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.Errorf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.Errorf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}

// GetWorkerStatus returns whether each worker is running
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		if w, ok := worker.(interface{ IsRunning() bool }); ok {
			status[worker.GetWorkerID()] = w.IsRunning()
		} else {
			status[worker.GetWorkerID()] = false
		}
	}
	return status
}
