package schemas

import (
	"fmt"
	"time"
)

// -- Productivity Item Schemas --

// TaskItem is a to-do entry extracted from user input. Items are created by
// the intent parser, handed to a CalendarService exactly once, and discarded.
type TaskItem struct {
	Title string     `json:"title"`
	Due   *time.Time `json:"due,omitempty"`
	Notes string     `json:"notes,omitempty"`
}

// EventItem is a calendar event extracted from user input.
type EventItem struct {
	Title    string     `json:"title"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Location string     `json:"location,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// ReminderItem is a dated reminder extracted from user input.
type ReminderItem struct {
	Title   string     `json:"title"`
	Trigger *time.Time `json:"trigger,omitempty"`
	Notes   string     `json:"notes,omitempty"`
}

// ReminderRef is a lightweight handle to a stored reminder, used for
// substring matching during reschedule operations.
type ReminderRef struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Due   *time.Time `json:"due,omitempty"`
}

// RescheduleOperation moves an existing reminder to a new date. TaskTitle is a
// free-text fragment matched case-insensitively against stored reminder
// titles; it is not an identifier.
type RescheduleOperation struct {
	TaskTitle string    `json:"task_title"`
	NewDate   time.Time `json:"new_date"`
}

// TimeOfDay is a wall-clock time with no date component.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// String renders a 12-hour clock representation, e.g. "7:30 AM".
func (t TimeOfDay) String() string {
	period := "AM"
	hour := t.Hour
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		hour -= 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, period)
}

// CheckInSlot is one of the three daily check-in windows (morning, afternoon,
// evening). A nil Time means the slot uses its built-in default.
type CheckInSlot struct {
	Enabled bool       `json:"enabled"`
	Time    *TimeOfDay `json:"time,omitempty"`
}
