package schemas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseResult_HasCreatable(t *testing.T) {
	testCases := []struct {
		name     string
		result   ParseResult
		expected bool
	}{
		{"empty", ParseResult{}, false},
		{"tasks only", ParseResult{Tasks: []TaskItem{{Title: "buy milk"}}}, true},
		{"events only", ParseResult{Events: []EventItem{{Title: "standup"}}}, true},
		{"reminders only", ParseResult{Reminders: []ReminderItem{{Title: "call mom"}}}, true},
		{"goal ops are not creatable", ParseResult{GoalOps: []GoalOperation{{Op: GoalOpPause, GoalRef: "gym"}}}, false},
		{"vault ops are not creatable", ParseResult{VaultOps: []VaultOperation{{Action: VaultList}}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.result.HasCreatable())
		})
	}
}

func TestParseResult_IsEmpty(t *testing.T) {
	assert.True(t, (&ParseResult{}).IsEmpty())
	assert.False(t, (&ParseResult{Summary: "noted"}).IsEmpty())
	assert.False(t, (&ParseResult{ClarifyingQuestion: "when?"}).IsEmpty())
	assert.False(t, (&ParseResult{Break: &BreakCommand{End: true}}).IsEmpty())
	assert.False(t, (&ParseResult{Help: &HelpRequest{}}).IsEmpty())
}

func TestParseResult_CreatableCount(t *testing.T) {
	r := ParseResult{
		Tasks:     []TaskItem{{Title: "a"}, {Title: "b"}},
		Reminders: []ReminderItem{{Title: "c"}},
	}
	assert.Equal(t, 3, r.CreatableCount())
}

func TestGoalItem_Progress(t *testing.T) {
	g := GoalItem{Title: "run a 10k"}
	assert.Zero(t, g.Progress(), "a goal with no milestones has zero progress")

	g.Milestones = []Milestone{
		{Title: "run 2k", Done: true},
		{Title: "run 5k", Done: true},
		{Title: "run 8k"},
		{Title: "run 10k"},
	}
	assert.InDelta(t, 50.0, g.Progress(), 0.001)
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "7:30 AM", TimeOfDay{Hour: 7, Minute: 30}.String())
	assert.Equal(t, "7:00 PM", TimeOfDay{Hour: 19}.String())
	assert.Equal(t, "12:00 AM", TimeOfDay{Hour: 0}.String())
	assert.Equal(t, "12:15 PM", TimeOfDay{Hour: 12, Minute: 15}.String())
}

func TestPersonality_Valid(t *testing.T) {
	assert.True(t, PersonalityWarm.Valid())
	assert.True(t, PersonalityConcise.Valid())
	assert.True(t, PersonalityCoach.Valid())
	assert.False(t, Personality("sarcastic").Valid())
}

func TestBreakCommand_FieldsAreIndependent(t *testing.T) {
	until := time.Now().Add(time.Hour)
	cmd := BreakCommand{Until: &until}
	assert.Zero(t, cmd.DurationMinutes)
	assert.False(t, cmd.End)
}
