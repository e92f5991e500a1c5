package workers

import (
	"context"
	"time"

	"github.com/alimgiray/crewledger/internal/metrics"
	"github.com/alimgiray/crewledger/pkg/logger"
)

// OTPStore is the part of the user repository the sweeper needs
type OTPStore interface {
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

// OTPSweeper periodically clears one-time passwords that have expired, so
// stale hashes do not linger in the users table
type OTPSweeper struct {
	*BaseWorker
	store    OTPStore
	interval time.Duration
	now      func() time.Time
}

// NewOTPSweeper creates a new sweeper running every interval
func NewOTPSweeper(workerID string, store OTPStore, interval time.Duration) *OTPSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &OTPSweeper{
		BaseWorker: NewBaseWorker(workerID),
		store:      store,
		interval:   interval,
		now:        time.Now,
	}
}

// Start begins the sweep loop
func (w *OTPSweeper) Start(ctx context.Context) error {
	if !w.setRunning(true) {
		return nil
	}
	logger.Infof("OTP sweeper %s started", w.WorkerID)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setRunning(false)
			logger.Infof("OTP sweeper %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("OTP sweeper %s stopping", w.WorkerID)
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns the number of cleared codes
func (w *OTPSweeper) Sweep(ctx context.Context) int64 {
	cleared, err := w.store.ClearExpiredOTPs(ctx, w.now())
	if err != nil {
		logger.WithError(err).WithField("worker_id", w.WorkerID).Error("Failed to clear expired OTPs")
		return 0
	}

	if cleared > 0 {
		metrics.OTPSwept.Add(float64(cleared))
		logger.WithField("worker_id", w.WorkerID).WithField("cleared", cleared).Debug("Expired OTPs cleared")
	}
	return cleared
}
