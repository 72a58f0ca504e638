// internal/conversation/machine_test.go
package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aferrand/valet/api/schemas"
)

// suppressWizard pre-enables a check-in slot so confirmed saves do not
// auto-enter setup.
func suppressWizard(h *testHarness) {
	h.breaks.checkIns[0] = schemas.CheckInSlot{Enabled: true}
}

func TestConfirmationRoundTripAffirmative(t *testing.T) {
	due := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	h := newHarness(&schemas.ParseResult{
		Reminders: []schemas.ReminderItem{{Title: "Call mom", Trigger: &due}},
		Summary:   "One reminder: call mom tomorrow at 3.",
	})
	suppressWizard(h)
	ctx := context.Background()

	reply, err := h.machine.Submit(ctx, "remind me to call mom tomorrow at 3pm")
	require.NoError(t, err)
	assert.Contains(t, reply, "One reminder: call mom tomorrow at 3.")
	assert.Equal(t, PhaseAwaitingConfirmation, h.machine.Phase())
	assert.Empty(t, h.calendar.reminders)

	reply, err = h.machine.Submit(ctx, "yes please")
	require.NoError(t, err)
	assert.Contains(t, reply, "1 reminder")
	assert.Equal(t, PhaseIdle, h.machine.Phase())
	require.Len(t, h.calendar.reminders, 1)
	assert.Equal(t, "Call mom", h.calendar.reminders[0].Title)
}

func TestConfirmationRoundTripNegative(t *testing.T) {
	h := newHarness(&schemas.ParseResult{
		Tasks: []schemas.TaskItem{{Title: "Buy milk"}},
	})
	suppressWizard(h)
	ctx := context.Background()

	_, err := h.machine.Submit(ctx, "add buy milk")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingConfirmation, h.machine.Phase())

	reply, err := h.machine.Submit(ctx, "no, cancel that")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	assert.Equal(t, PhaseIdle, h.machine.Phase())
	assert.Empty(t, h.calendar.tasks)

	// The discarded batch is gone for good; the next turn goes to the parser.
	_, err = h.machine.Submit(ctx, "something else")
	require.NoError(t, err)
	assert.Equal(t, 2, h.parser.calls)
}

func TestConfirmationAmbiguousReprompts(t *testing.T) {
	h := newHarness(&schemas.ParseResult{
		Tasks: []schemas.TaskItem{{Title: "Buy milk"}},
	})
	suppressWizard(h)
	ctx := context.Background()

	_, err := h.machine.Submit(ctx, "add buy milk")
	require.NoError(t, err)

	reply, err := h.machine.Submit(ctx, "what's the weather like")
	require.NoError(t, err)
	assert.Contains(t, reply, "Yes or no")
	assert.Equal(t, PhaseAwaitingConfirmation, h.machine.Phase())
	assert.Equal(t, 1, h.parser.calls)

	// The pending batch survives the re-prompt.
	_, err = h.machine.Submit(ctx, "yes")
	require.NoError(t, err)
	assert.Len(t, h.calendar.tasks, 1)
}

func TestAffirmativeWinsWhenBothMatch(t *testing.T) {
	h := newHarness(&schemas.ParseResult{
		Tasks: []schemas.TaskItem{{Title: "Buy milk"}},
	})
	suppressWizard(h)
	ctx := context.Background()

	_, err := h.machine.Submit(ctx, "add buy milk")
	require.NoError(t, err)

	// "yes, no, wait" contains words from both sets; affirmative is checked
	// first and wins.
	_, err = h.machine.Submit(ctx, "yes, no, wait")
	require.NoError(t, err)
	assert.Len(t, h.calendar.tasks, 1)
}

func TestParserFailureResetsToIdle(t *testing.T) {
	h := newHarness(nil)
	h.parser.err = errors.New("network down")
	ctx := context.Background()

	reply, err := h.machine.Submit(ctx, "remind me to call mom")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	assert.Equal(t, PhaseIdle, h.machine.Phase())
	assert.Equal(t, 1, h.parser.calls)

	// Not retried: the next submit is a fresh turn.
	_, err = h.machine.Submit(ctx, "hello again")
	require.NoError(t, err)
	assert.Equal(t, 2, h.parser.calls)
}

func TestEmptyUtteranceIgnored(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	reply, err := h.machine.Submit(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Equal(t, PhaseIdle, h.machine.Phase())
	assert.Zero(t, h.parser.calls)
}

func TestEmptyUtteranceWhileListeningReturnsToIdle(t *testing.T) {
	h := newHarness(nil)
	require.NoError(t, h.machine.BeginListening())
	assert.Equal(t, PhaseListening, h.machine.Phase())

	reply, err := h.machine.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Equal(t, PhaseIdle, h.machine.Phase())
}

func TestSecondTurnInFlightRejected(t *testing.T) {
	h := newHarness(&schemas.ParseResult{Summary: "ok"})
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	h.parser.result = nil
	slow := &slowParser{release: release, started: started}
	h.machine.deps.Parser = slow

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := h.machine.Submit(ctx, "first turn")
		assert.NoError(t, err)
	}()

	<-started
	_, err := h.machine.Submit(ctx, "second turn")
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(release)
	wg.Wait()
}

type slowParser struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *slowParser) Parse(_ context.Context, _ string, _ schemas.ConversationContext) (*schemas.ParseResult, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return &schemas.ParseResult{Summary: "done"}, nil
}

func TestListeningRoundTrip(t *testing.T) {
	h := newHarness(&schemas.ParseResult{Summary: "Heard you."})
	h.speech.transcript = "remind me to stretch"
	ctx := context.Background()

	require.NoError(t, h.machine.BeginListening())
	assert.True(t, h.speech.listening)

	reply, err := h.machine.EndListening(ctx)
	require.NoError(t, err)
	assert.Contains(t, reply, "Heard you.")
	assert.Equal(t, 1, h.parser.calls)
	assert.Equal(t, PhaseIdle, h.machine.Phase())
}

func TestBeginListeningOnlyFromIdle(t *testing.T) {
	h := newHarness(&schemas.ParseResult{
		Tasks: []schemas.TaskItem{{Title: "Buy milk"}},
	})
	suppressWizard(h)
	ctx := context.Background()

	_, err := h.machine.Submit(ctx, "add buy milk")
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingConfirmation, h.machine.Phase())
	require.Error(t, h.machine.BeginListening())
}

func TestQuickNote(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	prompt, err := h.machine.BeginQuickNote()
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Equal(t, PhaseQuickNote, h.machine.Phase())

	reply, err := h.machine.Submit(ctx, "check tire pressure")
	require.NoError(t, err)
	assert.Equal(t, "Noted.", reply)
	assert.Equal(t, PhaseIdle, h.machine.Phase())
	require.Len(t, h.calendar.tasks, 1)
	assert.Equal(t, "check tire pressure", h.calendar.tasks[0].Title)
	assert.Zero(t, h.parser.calls)
}

func TestBrainDump(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	_, err := h.machine.BeginBrainDump()
	require.NoError(t, err)

	for _, line := range []string{"email the landlord", "book dentist", "water plants"} {
		reply, err := h.machine.Submit(ctx, line)
		require.NoError(t, err)
		assert.Equal(t, "Got it. What else?", reply)
	}

	reply, err := h.machine.Submit(ctx, "done")
	require.NoError(t, err)
	assert.Contains(t, reply, "3 thoughts")
	assert.Equal(t, PhaseIdle, h.machine.Phase())
	assert.Len(t, h.calendar.tasks, 3)
	assert.Zero(t, h.parser.calls)
}

func TestPartialSaveFailureStillReportsSuccess(t *testing.T) {
	h := newHarness(&schemas.ParseResult{
		Tasks:     []schemas.TaskItem{{Title: "Buy milk"}},
		Reminders: []schemas.ReminderItem{{Title: "Call mom"}},
	})
	suppressWizard(h)
	h.calendar.failTask = true
	ctx := context.Background()

	_, err := h.machine.Submit(ctx, "milk and mom")
	require.NoError(t, err)

	reply, err := h.machine.Submit(ctx, "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "1 reminder")
	assert.NotContains(t, reply, "task")
	assert.Empty(t, h.calendar.tasks)
	assert.Len(t, h.calendar.reminders, 1)
}

func TestConversationHistoryWindow(t *testing.T) {
	h := newHarness(&schemas.ParseResult{Summary: "ok"})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := h.machine.Submit(ctx, "hello")
		require.NoError(t, err)
	}
	assert.Len(t, h.machine.turns, 6)
}
