package workers

import (
	"context"
	"sync"
)

// Worker interface defines the contract for all background workers
type Worker interface {
	// Start runs the worker until ctx is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the worker
	Stop() error

	// GetWorkerID returns the unique identifier for this worker
	GetWorkerID() string
}

// BaseWorker provides common functionality for all workers
type BaseWorker struct {
	WorkerID string
	StopChan chan struct{}

	mu      sync.Mutex
	running bool
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(workerID string) *BaseWorker {
	return &BaseWorker{
		WorkerID: workerID,
		StopChan: make(chan struct{}),
	}
}

// GetWorkerID returns the worker's unique identifier
func (w *BaseWorker) GetWorkerID() string {
	return w.WorkerID
}

// setRunning flips the running flag; it reports false if already in that state
func (w *BaseWorker) setRunning(running bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running == running {
		return false
	}
	w.running = running
	return true
}

// Stop gracefully stops the worker
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.running = false
		close(w.StopChan)
	}
	return nil
}

// IsRunning checks if the worker is currently running
func (w *BaseWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
