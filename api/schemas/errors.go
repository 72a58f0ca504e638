package schemas

import "errors"

// Sentinel errors shared across collaborator boundaries. Implementations wrap
// these so callers can test with errors.Is regardless of the backing store.
var (
	// ErrSecretNotFound is returned by SecretVault.Retrieve for unknown names.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrGoalNotFound is returned by GoalTracker.Find when neither an id nor
	// a title fragment matches.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrReminderNotFound is returned by CalendarService.Reschedule for an
	// unknown reminder id.
	ErrReminderNotFound = errors.New("reminder not found")
)
