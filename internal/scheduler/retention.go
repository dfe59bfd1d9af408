package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readinglog/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer saves background tasks.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// RetentionScheduler periodically enqueues audit trail pruning.
type RetentionScheduler struct {
	queue         Enqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewRetentionScheduler creates a scheduler. An empty schedule disables it.
func NewRetentionScheduler(queue Enqueuer, schedule string, retentionDays int) *RetentionScheduler {
	return &RetentionScheduler{
		queue:         queue,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRun returns the next time the schedule fires after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Start registers the cron job and runs it until ctx is cancelled or Stop
// is called.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("Retention scheduler: disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.RunNow); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRun(s.schedule, time.Now())
	log.Printf("Retention scheduler: started with schedule '%s', keeping %d days. Next run: %v",
		s.schedule, s.retentionDays, next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Retention scheduler: stopped")
}

// IsRunning reports whether the cron job is active.
func (s *RetentionScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow enqueues one pruning task immediately.
func (s *RetentionScheduler) RunNow() {
	id, err := s.queue.Enqueue(tasks.PruneAuditTrailTask{RetentionDays: s.retentionDays})
	if err != nil {
		log.Printf("Retention scheduler: failed to enqueue pruning: %v", err)
		return
	}
	log.Printf("Retention scheduler: enqueued pruning task %s", id)
}
