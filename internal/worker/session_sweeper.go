package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger deletes lapsed sessions and reports how many were removed.
type Purger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionSweeper periodically purges lapsed session rows. Authorization never
// depends on it running; it only bounds storage growth.
type SessionSweeper struct {
	purger   Purger
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionSweeper constructs a sweeper; a non-positive interval disables it.
func NewSessionSweeper(purger Purger, interval time.Duration, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{purger: purger, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *SessionSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("session sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	purged, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		s.logger.Warn("session sweep failed", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("session sweep", zap.Int64("purged", purged))
	}
}
