package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 5 * time.Minute

type Scheduler struct {
	cron   *cron.Cron
	mirror *Mirror
	log    *zap.Logger
}

// NewScheduler registers the mirror job on a six-field (seconds) schedule.
func NewScheduler(m *Mirror, schedule string, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		mirror: m,
		log:    log,
	}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid MIRROR_SCHEDULE %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if err := s.mirror.Run(ctx); err != nil {
		s.log.Warn("scheduled mirror finished with errors", zap.Error(err))
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("mirror scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
