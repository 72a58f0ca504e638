// internal/conversation/dispatcher.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// dispatch routes one ParseResult to exactly one action branch. The priority
// order is load-bearing: mode changes (break, help) and durable planning
// state (goals) outrank operations on existing state (reschedule, vault),
// which outrank new-item creation, the only category gated behind
// confirmation. Vault operations are the single branch that also saves
// co-occurring creatable items. A turn never ends silently; the last branch
// is the "didn't get that" fallback.
func (m *Machine) dispatch(ctx context.Context, result *schemas.ParseResult) Outcome {
	switch {
	case result.Break != nil:
		return m.dispatchBreak(ctx, result)
	case result.Help != nil:
		return Outcome{Kind: OutcomeHelp, Summary: result.Summary, HelpTopic: result.Help.Topic}
	case len(result.Goals) > 0:
		return m.dispatchGoals(ctx, result)
	case len(result.GoalOps) > 0:
		return m.dispatchGoalOps(ctx, result)
	case len(result.RescheduleOps) > 0:
		return m.dispatchReschedules(ctx, result)
	case len(result.VaultOps) > 0:
		return m.dispatchVault(ctx, result)
	case result.HasCreatable():
		return Outcome{
			Kind:    OutcomeConfirmationRequested,
			Summary: result.Summary,
			Counts: ItemCounts{
				Tasks:     len(result.Tasks),
				Events:    len(result.Events),
				Reminders: len(result.Reminders),
			},
		}
	case result.ClarifyingQuestion != "":
		return Outcome{Kind: OutcomeClarification, Question: result.ClarifyingQuestion}
	default:
		return Outcome{Kind: OutcomeFallback, Summary: result.Summary}
	}
}

func (m *Machine) dispatchBreak(ctx context.Context, result *schemas.ParseResult) Outcome {
	cmd := result.Break
	if cmd.End {
		if err := m.deps.Breaks.EndBreak(ctx); err != nil {
			m.log.Error("Failed to end break", zap.Error(err))
		}
		return Outcome{Kind: OutcomeBreakEnded, Summary: result.Summary}
	}

	var err error
	switch {
	case cmd.Until != nil:
		err = m.deps.Breaks.StartBreakUntil(ctx, *cmd.Until)
	case cmd.DurationMinutes > 0:
		err = m.deps.Breaks.StartBreak(ctx, time.Duration(cmd.DurationMinutes)*time.Minute)
	default:
		err = m.deps.Breaks.StartBreak(ctx, 15*time.Minute)
	}
	if err != nil {
		m.log.Error("Failed to start break", zap.Error(err))
		return Outcome{Kind: OutcomeError}
	}

	out := Outcome{Kind: OutcomeBreakStarted, Summary: result.Summary}
	if active, until, err := m.deps.Breaks.Active(ctx); err == nil && active {
		out.BreakUntil = until.Format("3:04 PM")
	}
	return out
}

func (m *Machine) dispatchGoals(ctx context.Context, result *schemas.ParseResult) Outcome {
	out := Outcome{Kind: OutcomeGoalsAdded, Summary: result.Summary}
	for _, goal := range result.Goals {
		if _, err := m.deps.Goals.AddGoal(ctx, goal); err != nil {
			m.log.Error("Failed to add goal", zap.String("title", goal.Title), zap.Error(err))
			continue
		}
		out.Detail = append(out.Detail, goal.Title)
	}
	return out
}

func (m *Machine) dispatchGoalOps(ctx context.Context, result *schemas.ParseResult) Outcome {
	out := Outcome{Kind: OutcomeGoalOps, Summary: result.Summary}
	for _, op := range result.GoalOps {
		note, err := m.applyGoalOp(ctx, op)
		if err != nil {
			if errors.Is(err, schemas.ErrGoalNotFound) {
				out.Detail = append(out.Detail, fmt.Sprintf("I couldn't find a goal matching %q.", op.GoalRef))
			} else {
				m.log.Error("Goal operation failed", zap.String("op", string(op.Op)), zap.Error(err))
			}
			continue
		}
		if note != "" {
			out.Detail = append(out.Detail, note)
		}
	}
	return out
}

func (m *Machine) applyGoalOp(ctx context.Context, op schemas.GoalOperation) (string, error) {
	goal, err := m.deps.Goals.Find(ctx, op.GoalRef)
	if err != nil {
		return "", err
	}

	switch op.Op {
	case schemas.GoalOpProgress:
		if err := m.deps.Goals.RecordProgress(ctx, goal.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Logged progress on %s.", goal.Title), nil

	case schemas.GoalOpCompleteMilestone:
		adv, err := m.deps.Goals.CompleteMilestone(ctx, goal.ID, op.MilestoneIndex)
		if err != nil {
			return "", err
		}
		if adv.GoalDone {
			return fmt.Sprintf("%s done. That was the last milestone for %s!", adv.Completed, goal.Title), nil
		}
		return fmt.Sprintf("%s done. Next up: %s.", adv.Completed, adv.Next), nil

	case schemas.GoalOpPause:
		if err := m.deps.Goals.Pause(ctx, goal.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Paused %s.", goal.Title), nil

	case schemas.GoalOpResume:
		if err := m.deps.Goals.Resume(ctx, goal.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Resumed %s.", goal.Title), nil

	case schemas.GoalOpStatus:
		note := fmt.Sprintf("%s is at %.0f%%.", goal.Title, goal.Progress())
		if goal.CurrentMilestone < len(goal.Milestones) {
			note += fmt.Sprintf(" Next milestone: %s.", goal.Milestones[goal.CurrentMilestone].Title)
		}
		return note, nil

	case schemas.GoalOpLink:
		if err := m.deps.Goals.LinkSchedule(ctx, goal.ID, op.Argument); err != nil {
			return "", err
		}
		return fmt.Sprintf("Linked %s to %s.", goal.Title, op.Argument), nil

	default:
		return "", fmt.Errorf("unknown goal operation %q", op.Op)
	}
}

func (m *Machine) dispatchReschedules(ctx context.Context, result *schemas.ParseResult) Outcome {
	out := Outcome{Kind: OutcomeRescheduled, Summary: result.Summary}

	open, err := m.deps.Calendar.FetchOpen(ctx)
	if err != nil {
		m.log.Error("Failed to fetch open reminders", zap.Error(err))
		return Outcome{Kind: OutcomeError}
	}

	for _, op := range result.RescheduleOps {
		ref, ok := matchReminder(open, op.TaskTitle)
		if !ok {
			out.Detail = append(out.Detail, fmt.Sprintf("I couldn't find a reminder matching %q.", op.TaskTitle))
			continue
		}
		if err := m.deps.Calendar.Reschedule(ctx, ref.ID, op.NewDate); err != nil {
			m.log.Error("Failed to reschedule reminder",
				zap.String("reminder_id", ref.ID), zap.Error(err))
			continue
		}
		out.Detail = append(out.Detail, fmt.Sprintf("Moved %s to %s.", ref.Title, op.NewDate.Format("Monday, January 2")))
	}
	return out
}

// matchReminder finds the first stored reminder whose title contains fragment
// as a case-insensitive substring.
func matchReminder(open []schemas.ReminderRef, fragment string) (schemas.ReminderRef, bool) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return schemas.ReminderRef{}, false
	}
	for _, ref := range open {
		if strings.Contains(strings.ToLower(ref.Title), needle) {
			return ref, true
		}
	}
	return schemas.ReminderRef{}, false
}

func (m *Machine) dispatchVault(ctx context.Context, result *schemas.ParseResult) Outcome {
	out := Outcome{Kind: OutcomeVault, Summary: result.Summary}

	for _, op := range result.VaultOps {
		switch op.Action {
		case schemas.VaultStore:
			if err := m.deps.Vault.Store(ctx, op.Name, op.Value); err != nil {
				m.log.Error("Vault store failed", zap.String("name", op.Name), zap.Error(err))
				continue
			}
			out.Detail = append(out.Detail, fmt.Sprintf("Stored %s.", op.Name))

		case schemas.VaultRetrieve:
			value, err := m.deps.Vault.Retrieve(ctx, op.Name)
			if err != nil {
				if errors.Is(err, schemas.ErrSecretNotFound) {
					out.Detail = append(out.Detail, fmt.Sprintf("I don't have anything stored under %q.", op.Name))
				} else {
					m.log.Error("Vault retrieve failed", zap.String("name", op.Name), zap.Error(err))
				}
				continue
			}
			out.Detail = append(out.Detail, fmt.Sprintf("%s is %s.", op.Name, value))
			out.Secret = true

		case schemas.VaultDelete:
			if err := m.deps.Vault.Delete(ctx, op.Name); err != nil {
				if errors.Is(err, schemas.ErrSecretNotFound) {
					out.Detail = append(out.Detail, fmt.Sprintf("I don't have anything stored under %q.", op.Name))
				} else {
					m.log.Error("Vault delete failed", zap.String("name", op.Name), zap.Error(err))
				}
				continue
			}
			out.Detail = append(out.Detail, fmt.Sprintf("Deleted %s.", op.Name))

		case schemas.VaultList:
			names, err := m.deps.Vault.List(ctx)
			if err != nil {
				m.log.Error("Vault list failed", zap.Error(err))
				continue
			}
			if len(names) == 0 {
				out.Detail = append(out.Detail, "The vault is empty.")
			} else {
				out.Detail = append(out.Detail, fmt.Sprintf("You have %s stored.", joinEnglish(names)))
			}

		default:
			m.log.Warn("Unknown vault action", zap.String("action", string(op.Action)))
		}
	}

	// The one branch that also saves co-occurring creatable items.
	if result.HasCreatable() {
		out.Counts = m.saveItems(ctx, result)
	}
	return out
}

// saveItems creates every task, event and reminder in the result. Partial
// failure is logged per item and the rest of the batch proceeds; there is no
// rollback across the batch.
func (m *Machine) saveItems(ctx context.Context, result *schemas.ParseResult) ItemCounts {
	var counts ItemCounts
	for _, task := range result.Tasks {
		if err := m.deps.Calendar.CreateTask(ctx, task); err != nil {
			m.log.Error("Failed to create task", zap.String("title", task.Title), zap.Error(err))
			continue
		}
		counts.Tasks++
	}
	for _, event := range result.Events {
		if err := m.deps.Calendar.CreateEvent(ctx, event); err != nil {
			m.log.Error("Failed to create event", zap.String("title", event.Title), zap.Error(err))
			continue
		}
		counts.Events++
	}
	for _, reminder := range result.Reminders {
		if err := m.deps.Calendar.CreateReminder(ctx, reminder); err != nil {
			m.log.Error("Failed to create reminder", zap.String("title", reminder.Title), zap.Error(err))
			continue
		}
		counts.Reminders++
	}
	return counts
}
