package social

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// defaultSchedule publishes due cross-posts once a minute.
const defaultSchedule = "* * * * *"

// Scheduler runs PublishDue on a cron schedule. It implements the lifecycle
// Service interface so the system manager owns its start and stop.
type Scheduler struct {
	service  *Service
	cron     *cron.Cron
	schedule string
	log      *logger.Logger
}

// NewScheduler constructs a scheduler over the social service.
func NewScheduler(service *Service, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDefault("social-scheduler")
	}
	return &Scheduler{
		service:  service,
		cron:     cron.New(),
		schedule: defaultSchedule,
		log:      log,
	}
}

// WithSchedule overrides the cron expression. Call before Start.
func (s *Scheduler) WithSchedule(spec string) *Scheduler {
	s.schedule = spec
	return s
}

// Name implements the lifecycle Service interface.
func (s *Scheduler) Name() string { return "social-scheduler" }

// Start registers the cron entry and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()

		n, err := s.service.PublishDue(runCtx, time.Now().UTC())
		if err != nil {
			s.log.WithError(err).Warn("publish due posts")
			return
		}
		if n > 0 {
			s.log.WithField("count", n).Info("published scheduled posts")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.WithField("schedule", s.schedule).Info("social scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
