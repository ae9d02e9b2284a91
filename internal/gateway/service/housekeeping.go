package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically sweeps expired correlations and sessions
// so abandoned SCA round trips end EXPIRED and tables do not grow unbounded.
type HousekeepingService struct {
	Correlations *CorrelationService
	Sessions     *SessionService
	Logger       *slog.Logger
	Interval     time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(correlations *CorrelationService, sessions *SessionService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Correlations: correlations,
		Sessions:     sessions,
		Logger:       logger,
		Interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background worker. It is non-blocking and should be
// called after migrations have run. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass. Each step is independent; a failure in one
// does not stop the other.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	s.Logger.Debug("starting housekeeping sweep")

	expired := s.Correlations.Expire(ctx)

	sessions, err := s.Sessions.DeleteExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	}

	s.Logger.Info("housekeeping sweep completed",
		"correlation_rows", expired,
		"sessions_deleted", sessions,
	)
}
