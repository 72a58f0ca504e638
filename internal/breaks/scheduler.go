// internal/breaks/scheduler.go

// Package breaks owns break mode and the daily check-in schedule. A break is
// just a deadline compared against the clock on read; there is no background
// timer to leak.
package breaks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// Scheduler is an in-memory BreakScheduler.
type Scheduler struct {
	mu         sync.Mutex
	breakUntil time.Time
	checkIns   [3]schemas.CheckInSlot
	now        func() time.Time
	log        *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		now: time.Now,
		log: logger.Named("breaks"),
	}
}

// StartBreak suspends check-ins for the given duration.
func (s *Scheduler) StartBreak(_ context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("break duration must be positive")
	}
	s.mu.Lock()
	s.breakUntil = s.now().Add(d)
	until := s.breakUntil
	s.mu.Unlock()

	s.log.Info("Break started", zap.Time("until", until))
	return nil
}

// StartBreakUntil suspends check-ins up to a wall-clock instant.
func (s *Scheduler) StartBreakUntil(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.After(s.now()) {
		return fmt.Errorf("break end %s is in the past", t.Format(time.RFC3339))
	}
	s.breakUntil = t
	s.log.Info("Break started", zap.Time("until", t))
	return nil
}

// EndBreak clears the break immediately. Ending when no break is active is a
// no-op, not an error.
func (s *Scheduler) EndBreak(_ context.Context) error {
	s.mu.Lock()
	s.breakUntil = time.Time{}
	s.mu.Unlock()

	s.log.Info("Break ended")
	return nil
}

// Active reports whether a break is in progress and when it ends. An expired
// deadline reads as inactive without any cleanup step.
func (s *Scheduler) Active(_ context.Context) (bool, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.breakUntil.IsZero() || !s.breakUntil.After(s.now()) {
		return false, time.Time{}, nil
	}
	return true, s.breakUntil, nil
}

// ScheduleDailyCheckIns replaces the whole three-slot schedule in one call.
func (s *Scheduler) ScheduleDailyCheckIns(_ context.Context, slots [3]schemas.CheckInSlot) error {
	s.mu.Lock()
	s.checkIns = slots
	s.mu.Unlock()

	enabled := 0
	for _, slot := range slots {
		if slot.Enabled {
			enabled++
		}
	}
	s.log.Info("Daily check-ins scheduled", zap.Int("enabled_slots", enabled))
	return nil
}

func (s *Scheduler) CheckIns(_ context.Context) ([3]schemas.CheckInSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkIns, nil
}

// CancelAll clears the check-in schedule and any active break.
func (s *Scheduler) CancelAll(_ context.Context) error {
	s.mu.Lock()
	s.checkIns = [3]schemas.CheckInSlot{}
	s.breakUntil = time.Time{}
	s.mu.Unlock()

	s.log.Info("All check-ins cancelled")
	return nil
}
