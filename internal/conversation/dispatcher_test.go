// internal/conversation/dispatcher_test.go
package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aferrand/valet/api/schemas"
)

func TestDispatchPriorityOrder(t *testing.T) {
	// One result with every category populated: the break command must win
	// and nothing else may execute.
	due := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	loaded := &schemas.ParseResult{
		Break:         &schemas.BreakCommand{DurationMinutes: 10},
		Help:          &schemas.HelpRequest{},
		Goals:         []schemas.GoalItem{{Title: "Run a 10k"}},
		GoalOps:       []schemas.GoalOperation{{Op: schemas.GoalOpProgress, GoalRef: "Run a 10k"}},
		RescheduleOps: []schemas.RescheduleOperation{{TaskTitle: "call", NewDate: due}},
		VaultOps:      []schemas.VaultOperation{{Action: schemas.VaultStore, Name: "pin", Value: "1234"}},
		Tasks:         []schemas.TaskItem{{Title: "Buy milk"}},
	}

	h := newHarness(nil)
	outcome := h.machine.dispatch(context.Background(), loaded)

	assert.Equal(t, OutcomeBreakStarted, outcome.Kind)
	assert.True(t, h.breaks.active)
	assert.Empty(t, h.goals.goals)
	assert.Empty(t, h.vault.secrets)
	assert.Empty(t, h.calendar.tasks)
}

func TestDispatchEachBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("break end", func(t *testing.T) {
		h := newHarness(nil)
		h.breaks.active = true
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{Break: &schemas.BreakCommand{End: true}})
		assert.Equal(t, OutcomeBreakEnded, outcome.Kind)
		assert.False(t, h.breaks.active)
	})

	t.Run("help", func(t *testing.T) {
		h := newHarness(nil)
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{Help: &schemas.HelpRequest{Topic: "vault"}})
		assert.Equal(t, OutcomeHelp, outcome.Kind)
		assert.Equal(t, "vault", outcome.HelpTopic)
	})

	t.Run("new goals beat goal ops", func(t *testing.T) {
		h := newHarness(nil)
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
			Goals:   []schemas.GoalItem{{Title: "Run a 10k"}, {Title: "Read more"}},
			GoalOps: []schemas.GoalOperation{{Op: schemas.GoalOpPause, GoalRef: "Run a 10k"}},
		})
		assert.Equal(t, OutcomeGoalsAdded, outcome.Kind)
		assert.Len(t, h.goals.goals, 2)
		assert.Equal(t, []string{"Run a 10k", "Read more"}, outcome.Detail)
	})

	t.Run("goal op not found noted per op", func(t *testing.T) {
		h := newHarness(nil)
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
			GoalOps: []schemas.GoalOperation{{Op: schemas.GoalOpStatus, GoalRef: "nonexistent"}},
		})
		assert.Equal(t, OutcomeGoalOps, outcome.Kind)
		require.Len(t, outcome.Detail, 1)
		assert.Contains(t, outcome.Detail[0], "couldn't find a goal")
	})

	t.Run("clarifying question verbatim", func(t *testing.T) {
		h := newHarness(nil)
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{ClarifyingQuestion: "Which mom?"})
		assert.Equal(t, OutcomeClarification, outcome.Kind)
		assert.Equal(t, "Which mom?", outcome.Question)
	})

	t.Run("empty result falls back, never silent", func(t *testing.T) {
		h := newHarness(nil)
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{})
		assert.Equal(t, OutcomeFallback, outcome.Kind)
		text, speak := Compose(schemas.PersonalityWarm, outcome)
		assert.NotEmpty(t, text)
		assert.True(t, speak)
	})
}

func TestDispatchRescheduleMatching(t *testing.T) {
	ctx := context.Background()
	newDate := time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC)

	h := newHarness(nil)
	h.calendar.open = []schemas.ReminderRef{
		{ID: "r1", Title: "Call mom"},
		{ID: "r2", Title: "Buy groceries"},
	}

	outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
		RescheduleOps: []schemas.RescheduleOperation{
			{TaskTitle: "call", NewDate: newDate},
			{TaskTitle: "dentist", NewDate: newDate},
		},
	})

	assert.Equal(t, OutcomeRescheduled, outcome.Kind)
	// "call" matches exactly "Call mom", case-insensitively.
	assert.Equal(t, newDate, h.calendar.reschedule["r1"])
	assert.NotContains(t, h.calendar.reschedule, "r2")
	// The miss is a per-op note, and it did not abort the batch.
	require.Len(t, outcome.Detail, 2)
	assert.Contains(t, outcome.Detail[0], "Call mom")
	assert.Contains(t, outcome.Detail[1], "dentist")
}

func TestDispatchVaultWithCoOccurringItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)

	outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
		VaultOps: []schemas.VaultOperation{{Action: schemas.VaultStore, Name: "wifi", Value: "hunter2"}},
		Tasks:    []schemas.TaskItem{{Title: "Buy milk"}},
	})

	assert.Equal(t, OutcomeVault, outcome.Kind)
	assert.Equal(t, "hunter2", h.vault.secrets["wifi"])
	// The one documented exception: items save directly, no confirmation.
	assert.Len(t, h.calendar.tasks, 1)
	assert.Equal(t, 1, outcome.Counts.Tasks)
}

func TestDispatchVaultRetrieve(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	h.vault.secrets["wifi"] = "hunter2"

	t.Run("found value is composed but not spoken", func(t *testing.T) {
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
			VaultOps: []schemas.VaultOperation{{Action: schemas.VaultRetrieve, Name: "wifi"}},
		})
		assert.True(t, outcome.Secret)

		text, speak := Compose(schemas.PersonalityWarm, outcome)
		assert.Contains(t, text, "hunter2")
		assert.False(t, speak)
	})

	t.Run("missing name is a user-visible note", func(t *testing.T) {
		outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
			VaultOps: []schemas.VaultOperation{{Action: schemas.VaultRetrieve, Name: "ghost"}},
		})
		require.Len(t, outcome.Detail, 1)
		assert.Contains(t, outcome.Detail[0], "ghost")
		assert.False(t, outcome.Secret)
	})
}

func TestDispatchConfirmationRequest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)

	outcome := h.machine.dispatch(ctx, &schemas.ParseResult{
		Tasks:     []schemas.TaskItem{{Title: "a"}, {Title: "b"}},
		Reminders: []schemas.ReminderItem{{Title: "c"}},
	})

	assert.Equal(t, OutcomeConfirmationRequested, outcome.Kind)
	assert.Equal(t, ItemCounts{Tasks: 2, Reminders: 1}, outcome.Counts)
	// Nothing is created until the user confirms.
	assert.Empty(t, h.calendar.tasks)
	assert.Empty(t, h.calendar.reminders)
}
