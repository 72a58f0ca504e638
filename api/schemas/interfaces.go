package schemas

import (
	"context"
	"time"
)

// -- Boundary Interfaces --
//
// The conversation core talks to every collaborator through these contracts.
// Implementations are injected into the conversation machine's constructor so
// the core is testable with fakes.

// IntentParser turns one free-form utterance into a structured ParseResult.
// It may fail on transport or auth errors; "nothing understood" is a valid,
// empty-ish ParseResult, never an error.
type IntentParser interface {
	Parse(ctx context.Context, text string, conv ConversationContext) (*ParseResult, error)
}

// CalendarService owns durable storage of tasks, events and reminders.
type CalendarService interface {
	CreateTask(ctx context.Context, item TaskItem) error
	CreateEvent(ctx context.Context, item EventItem) error
	CreateReminder(ctx context.Context, item ReminderItem) error
	// Reschedule moves the reminder with the given id to a new due date.
	Reschedule(ctx context.Context, reminderID string, newDate time.Time) error
	// FetchOpen lists all reminders that have not been completed, for
	// substring matching during reschedule operations.
	FetchOpen(ctx context.Context) ([]ReminderRef, error)
}

// SecretVault stores encrypted named secrets. Retrieve returns an error
// satisfying errors.Is(err, ErrSecretNotFound) for unknown names so callers
// can distinguish "not found" from transport failures.
type SecretVault interface {
	Store(ctx context.Context, name, value string) error
	Retrieve(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// GoalTracker owns goal persistence and milestone bookkeeping.
type GoalTracker interface {
	// AddGoal stores a new goal and returns its id.
	AddGoal(ctx context.Context, goal GoalItem) (string, error)
	// Find resolves an id or case-insensitive title fragment to a stored
	// goal. The first match wins; ErrGoalNotFound when nothing matches.
	Find(ctx context.Context, ref string) (*GoalItem, error)
	RecordProgress(ctx context.Context, goalID string) error
	// CompleteMilestone marks the milestone at index done (a negative index
	// means the current milestone) and advances the goal's pointer.
	CompleteMilestone(ctx context.Context, goalID string, index int) (*MilestoneAdvance, error)
	Pause(ctx context.Context, goalID string) error
	Resume(ctx context.Context, goalID string) error
	// LinkSchedule attaches a human-readable cadence description to a goal.
	LinkSchedule(ctx context.Context, goalID, schedule string) error
}

// BreakScheduler owns break mode and the daily check-in schedule.
type BreakScheduler interface {
	StartBreak(ctx context.Context, d time.Duration) error
	StartBreakUntil(ctx context.Context, t time.Time) error
	EndBreak(ctx context.Context) error
	// Active reports whether a break is in progress and when it ends.
	Active(ctx context.Context) (bool, time.Time, error)
	// ScheduleDailyCheckIns replaces the whole three-slot schedule
	// (morning, afternoon, evening) in a single call.
	ScheduleDailyCheckIns(ctx context.Context, slots [3]CheckInSlot) error
	CheckIns(ctx context.Context) ([3]CheckInSlot, error)
	CancelAll(ctx context.Context) error
}

// SpeechIO is the speech transport boundary. Speak is fire-and-forget from
// the conversation core's perspective; StopListening returns a best-effort
// transcript which may be empty.
type SpeechIO interface {
	Speak(ctx context.Context, text string) error
	StartListening() error
	StopListening() (string, error)
}
