// internal/goals/tracker.go

// Package goals tracks long-running goals and their milestone progress.
package goals

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// Tracker is an in-memory GoalTracker. Goals are resolved either by exact id
// or by case-insensitive title fragment; the first stored goal that matches
// wins.
type Tracker struct {
	mu    sync.Mutex
	goals []*schemas.GoalItem
	log   *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{log: logger.Named("goals")}
}

// AddGoal stores the goal and returns its generated id. The milestone pointer
// starts at the first not-done milestone.
func (t *Tracker) AddGoal(_ context.Context, goal schemas.GoalItem) (string, error) {
	if strings.TrimSpace(goal.Title) == "" {
		return "", fmt.Errorf("goal title is required")
	}

	goal.ID = uuid.New().String()
	goal.CurrentMilestone = 0
	for i, m := range goal.Milestones {
		if !m.Done {
			goal.CurrentMilestone = i
			break
		}
	}

	t.mu.Lock()
	t.goals = append(t.goals, &goal)
	t.mu.Unlock()

	t.log.Info("Goal added", zap.String("goal_id", goal.ID), zap.String("title", goal.Title))
	return goal.ID, nil
}

// Find resolves ref to a stored goal and returns a copy.
func (t *Tracker) Find(_ context.Context, ref string) (*schemas.GoalItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.locate(ref)
	if err != nil {
		return nil, err
	}
	copied := *g
	copied.Milestones = append([]schemas.Milestone(nil), g.Milestones...)
	return &copied, nil
}

// locate must be called with t.mu held.
func (t *Tracker) locate(ref string) (*schemas.GoalItem, error) {
	needle := strings.ToLower(strings.TrimSpace(ref))
	if needle == "" {
		return nil, fmt.Errorf("empty goal reference: %w", schemas.ErrGoalNotFound)
	}
	for _, g := range t.goals {
		if g.ID == ref {
			return g, nil
		}
	}
	for _, g := range t.goals {
		if strings.Contains(strings.ToLower(g.Title), needle) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("goal %q: %w", ref, schemas.ErrGoalNotFound)
}

// RecordProgress is a lightweight touch on a goal, used when the user reports
// working on it without completing a milestone.
func (t *Tracker) RecordProgress(_ context.Context, goalID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.locate(goalID)
	if err != nil {
		return err
	}
	t.log.Info("Progress recorded", zap.String("goal_id", g.ID))
	return nil
}

// CompleteMilestone marks the milestone at index done and advances the goal's
// pointer past every completed milestone. A negative index targets the
// current milestone. The pointer never moves backwards.
func (t *Tracker) CompleteMilestone(_ context.Context, goalID string, index int) (*schemas.MilestoneAdvance, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.locate(goalID)
	if err != nil {
		return nil, err
	}
	if len(g.Milestones) == 0 {
		return nil, fmt.Errorf("goal %q has no milestones", g.Title)
	}

	if index < 0 {
		index = g.CurrentMilestone
	}
	if index >= len(g.Milestones) {
		return nil, fmt.Errorf("milestone index %d out of range for goal %q", index, g.Title)
	}

	g.Milestones[index].Done = true

	advance := &schemas.MilestoneAdvance{Completed: g.Milestones[index].Title}
	for g.CurrentMilestone < len(g.Milestones) && g.Milestones[g.CurrentMilestone].Done {
		g.CurrentMilestone++
	}
	if g.CurrentMilestone >= len(g.Milestones) {
		advance.GoalDone = true
	} else {
		advance.Next = g.Milestones[g.CurrentMilestone].Title
	}

	t.log.Info("Milestone completed",
		zap.String("goal_id", g.ID),
		zap.String("milestone", advance.Completed),
		zap.Bool("goal_done", advance.GoalDone),
	)
	return advance, nil
}

func (t *Tracker) Pause(_ context.Context, goalID string) error {
	return t.setPaused(goalID, true)
}

func (t *Tracker) Resume(_ context.Context, goalID string) error {
	return t.setPaused(goalID, false)
}

func (t *Tracker) setPaused(goalID string, paused bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.locate(goalID)
	if err != nil {
		return err
	}
	g.Paused = paused
	return nil
}

// LinkSchedule attaches a cadence description, e.g. "every weekday morning".
func (t *Tracker) LinkSchedule(_ context.Context, goalID, schedule string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.locate(goalID)
	if err != nil {
		return err
	}
	g.Schedule = schedule
	return nil
}
