package schemas

import "time"

// -- Intent Parser Schemas --

// VaultAction enumerates the operations the secret vault supports.
type VaultAction string

const (
	VaultStore    VaultAction = "store"
	VaultRetrieve VaultAction = "retrieve"
	VaultDelete   VaultAction = "delete"
	VaultList     VaultAction = "list"
)

// VaultOperation is a single secret-vault request. Value is only set for
// store operations and must never be logged.
type VaultOperation struct {
	Action VaultAction `json:"action"`
	Name   string      `json:"name,omitempty"`
	Value  string      `json:"value,omitempty"`
}

// BreakCommand starts or ends break mode. Exactly one of the three fields is
// populated: an explicit duration, an explicit end timestamp, or the End flag.
type BreakCommand struct {
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Until           *time.Time `json:"until,omitempty"`
	End             bool       `json:"end,omitempty"`
}

// HelpRequest asks for usage guidance on a topic ("tasks", "goals", "vault",
// "breaks", "checkins", or empty for general help).
type HelpRequest struct {
	Topic string `json:"topic,omitempty"`
}

// ParseResult is the structured bundle the intent parser returns for one
// turn. All fields are optional; an all-empty result is the parser's way of
// saying "nothing understood" and is not an error.
type ParseResult struct {
	Tasks         []TaskItem            `json:"tasks,omitempty"`
	Events        []EventItem           `json:"events,omitempty"`
	Reminders     []ReminderItem        `json:"reminders,omitempty"`
	Goals         []GoalItem            `json:"goals,omitempty"`
	GoalOps       []GoalOperation       `json:"goal_operations,omitempty"`
	RescheduleOps []RescheduleOperation `json:"reschedule_operations,omitempty"`
	VaultOps      []VaultOperation      `json:"vault_operations,omitempty"`
	Break         *BreakCommand         `json:"break,omitempty"`
	Help          *HelpRequest          `json:"help,omitempty"`
	// ClarifyingQuestion is surfaced verbatim when the parser needs more input.
	ClarifyingQuestion string `json:"clarifying_question,omitempty"`
	// Summary is the parser's own one-line description of what it understood.
	// When present it takes precedence over any hardcoded response template.
	Summary string `json:"summary,omitempty"`
}

// HasCreatable reports whether the result carries tasks, events or reminders,
// i.e. the one category gated behind user confirmation.
func (r *ParseResult) HasCreatable() bool {
	return len(r.Tasks) > 0 || len(r.Events) > 0 || len(r.Reminders) > 0
}

// CreatableCount returns the total number of confirmable items.
func (r *ParseResult) CreatableCount() int {
	return len(r.Tasks) + len(r.Events) + len(r.Reminders)
}

// IsEmpty reports whether the parser extracted nothing actionable at all.
func (r *ParseResult) IsEmpty() bool {
	return !r.HasCreatable() &&
		len(r.Goals) == 0 && len(r.GoalOps) == 0 &&
		len(r.RescheduleOps) == 0 && len(r.VaultOps) == 0 &&
		r.Break == nil && r.Help == nil &&
		r.ClarifyingQuestion == "" && r.Summary == ""
}

// -- Conversation Context --

// Personality selects the assistant's voice for composed responses.
type Personality string

const (
	PersonalityWarm    Personality = "warm"
	PersonalityConcise Personality = "concise"
	PersonalityCoach   Personality = "coach"
)

// Valid reports whether p names a known personality.
func (p Personality) Valid() bool {
	switch p {
	case PersonalityWarm, PersonalityConcise, PersonalityCoach:
		return true
	}
	return false
}

// Turn is one completed user/assistant exchange.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ConversationContext is the sliding window of recent turns plus the active
// personality, passed to the parser with every request.
type ConversationContext struct {
	Personality Personality `json:"personality"`
	Turns       []Turn      `json:"turns,omitempty"`
}
