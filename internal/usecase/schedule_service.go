package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

const defaultComputeDelay = 96 * time.Hour

// JobPublisher delivers a delayed POST to one of this service's internal
// job routes.
type JobPublisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

// ScheduledCompute describes a gameweek compute job handed to the queue.
type ScheduledCompute struct {
	Gameweek        int
	Path            string
	RunAt           time.Time
	Delay           time.Duration
	DeduplicationID string
}

type ScheduleService struct {
	calendarRepo scoring.CalendarRepository
	publisher    JobPublisher
	computeDelay time.Duration
	logger       *logging.Logger
	now          func() time.Time
}

// NewScheduleService builds a scheduler that runs each gameweek's compute
// computeDelay after its deadline. A nil publisher disables scheduling.
func NewScheduleService(
	calendarRepo scoring.CalendarRepository,
	publisher JobPublisher,
	computeDelay time.Duration,
	logger *logging.Logger,
) *ScheduleService {
	if computeDelay <= 0 {
		computeDelay = defaultComputeDelay
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ScheduleService{
		calendarRepo: calendarRepo,
		publisher:    publisher,
		computeDelay: computeDelay,
		logger:       logger,
		now:          time.Now,
	}
}

// ScheduleCompute enqueues the compute job for one gameweek. A run time in
// the past is published without delay.
func (s *ScheduleService) ScheduleCompute(ctx context.Context, gameweek int) (ScheduledCompute, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ScheduleCompute")
	defer span.End()

	if gameweek < 1 {
		return ScheduledCompute{}, fmt.Errorf("%w: gameweek must be at least 1", ErrInvalidInput)
	}
	if s.publisher == nil {
		return ScheduledCompute{}, fmt.Errorf("%w: job queue is not configured", ErrDependencyUnavailable)
	}

	gw, exists, err := s.calendarRepo.GetGameweek(ctx, gameweek)
	if err != nil {
		return ScheduledCompute{}, fmt.Errorf("get gameweek=%d: %w", gameweek, err)
	}
	if !exists {
		return ScheduledCompute{}, fmt.Errorf("%w: gameweek=%d", ErrNotFound, gameweek)
	}

	return s.publish(ctx, gw)
}

// ScheduleUpcoming enqueues a compute job for every gameweek whose run time
// has not passed yet.
func (s *ScheduleService) ScheduleUpcoming(ctx context.Context) ([]ScheduledCompute, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ScheduleUpcoming")
	defer span.End()

	if s.publisher == nil {
		return nil, fmt.Errorf("%w: job queue is not configured", ErrDependencyUnavailable)
	}

	calendar, err := s.calendarRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calendar: %w", err)
	}

	now := s.now().UTC()
	jobs := make([]ScheduledCompute, 0, len(calendar))
	for _, gw := range calendar {
		if !gw.DeadlineAt.Add(s.computeDelay).After(now) {
			continue
		}
		job, err := s.publish(ctx, gw)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}

	s.logger.InfoContext(ctx, "upcoming gameweek computes scheduled", "jobs", len(jobs))
	return jobs, nil
}

func (s *ScheduleService) publish(ctx context.Context, gw scoring.Gameweek) (ScheduledCompute, error) {
	runAt := gw.DeadlineAt.Add(s.computeDelay).UTC()
	delay := runAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	job := ScheduledCompute{
		Gameweek: gw.Number,
		Path:     fmt.Sprintf("/v1/internal/gameweeks/%d/compute", gw.Number),
		RunAt:    runAt,
		Delay:    delay,
		// A moved deadline yields a new id so the queue accepts the reschedule.
		DeduplicationID: fmt.Sprintf("compute-gw-%d-%d", gw.Number, runAt.Unix()),
	}

	payload := map[string]any{"gameweek": gw.Number}
	if err := s.publisher.Enqueue(ctx, job.Path, payload, job.Delay, job.DeduplicationID); err != nil {
		return ScheduledCompute{}, fmt.Errorf("%w: enqueue gameweek=%d compute: %v", ErrDependencyUnavailable, gw.Number, err)
	}

	s.logger.InfoContext(ctx, "gameweek compute scheduled",
		"gameweek", gw.Number,
		"run_at", runAt,
		"delay", delay.String(),
	)
	return job, nil
}
