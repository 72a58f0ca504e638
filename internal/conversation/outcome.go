// internal/conversation/outcome.go
package conversation

import "fmt"

// OutcomeKind names the dispatcher or protocol branch a turn resolved to.
// The composer keys its fallback templates on it.
type OutcomeKind int

const (
	OutcomeFallback OutcomeKind = iota
	OutcomeBreakStarted
	OutcomeBreakEnded
	OutcomeHelp
	OutcomeGoalsAdded
	OutcomeGoalOps
	OutcomeRescheduled
	OutcomeVault
	OutcomeConfirmationRequested
	OutcomeClarification
	OutcomeSaved
	OutcomeCancelled
	OutcomeConfirmReprompt
	OutcomeError
)

// ItemCounts tallies creatable items by category.
type ItemCounts struct {
	Tasks     int
	Events    int
	Reminders int
}

func (c ItemCounts) Total() int {
	return c.Tasks + c.Events + c.Reminders
}

// Describe renders the non-zero categories as spoken English, e.g.
// "2 tasks and 1 reminder".
func (c ItemCounts) Describe() string {
	var parts []string
	add := func(n int, singular string) {
		if n == 0 {
			return
		}
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", singular))
			return
		}
		parts = append(parts, fmt.Sprintf("%d %ss", n, singular))
	}
	add(c.Tasks, "task")
	add(c.Events, "event")
	add(c.Reminders, "reminder")
	return joinEnglish(parts)
}

// joinEnglish joins items with commas and a final "and".
func joinEnglish(parts []string) string {
	switch len(parts) {
	case 0:
		return "nothing"
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		out := ""
		for i, p := range parts {
			switch {
			case i == 0:
				out = p
			case i == len(parts)-1:
				out += " and " + p
			default:
				out += ", " + p
			}
		}
		return out
	}
}

// Outcome is what one dispatched turn produced, handed to the composer. At
// most one turn produces one Outcome; the composer turns it into exactly one
// response line.
type Outcome struct {
	Kind OutcomeKind

	// Summary is the parser's own description of the turn. When non-empty it
	// wins over the composer's fallback template for this Kind.
	Summary string

	// Detail carries per-operation notes (goal status lines, reschedule
	// not-found notes, vault results) appended after the lead line.
	Detail []string

	// Counts are the creatable items saved, or pending confirmation.
	Counts ItemCounts

	// Secret marks a response that contains a secret value. It is composed
	// as text but never handed to speech playback.
	Secret bool

	// Question is surfaced verbatim for clarification outcomes.
	Question string

	// HelpTopic selects the help text for help outcomes.
	HelpTopic string

	// BreakUntil is the break deadline for break-started outcomes; zero when
	// the scheduler did not report one.
	BreakUntil string
}
