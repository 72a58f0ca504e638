package schemas

// -- Goal Schemas --

// Milestone is a single step toward a goal.
type Milestone struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// GoalItem is a long-running objective with ordered milestones. It is created
// once from a ParseResult, persisted by a GoalTracker, and later mutated
// through GoalOperations.
type GoalItem struct {
	ID         string      `json:"id,omitempty"`
	Title      string      `json:"title"`
	Milestones []Milestone `json:"milestones,omitempty"`
	// Schedule is a human-readable cadence description, e.g. "every weekday morning".
	Schedule string `json:"schedule,omitempty"`
	// CurrentMilestone points at the next milestone to work on. It only ever
	// moves forward.
	CurrentMilestone int  `json:"current_milestone"`
	Paused           bool `json:"paused,omitempty"`
}

// Progress reports completed/total milestones as a percentage in [0, 100].
// A goal with no milestones reports zero.
func (g GoalItem) Progress() float64 {
	if len(g.Milestones) == 0 {
		return 0
	}
	done := 0
	for _, m := range g.Milestones {
		if m.Done {
			done++
		}
	}
	return float64(done) / float64(len(g.Milestones)) * 100
}

// GoalOpType enumerates the mutations a GoalOperation can request.
type GoalOpType string

const (
	GoalOpProgress          GoalOpType = "progress"
	GoalOpCompleteMilestone GoalOpType = "complete_milestone"
	GoalOpPause             GoalOpType = "pause"
	GoalOpResume            GoalOpType = "resume"
	GoalOpStatus            GoalOpType = "status"
	GoalOpLink              GoalOpType = "link"
)

// GoalOperation mutates an existing goal. GoalRef is either a goal id or a
// case-insensitive title fragment; the tracker resolves it to the first match.
type GoalOperation struct {
	Op      GoalOpType `json:"op"`
	GoalRef string     `json:"goal_ref"`
	// MilestoneIndex selects the milestone for complete_milestone. A negative
	// value means "the current milestone".
	MilestoneIndex int `json:"milestone_index,omitempty"`
	// Argument carries op-specific free text, e.g. the schedule description
	// for a link operation.
	Argument string `json:"argument,omitempty"`
}

// MilestoneAdvance reports the result of completing a milestone.
type MilestoneAdvance struct {
	Completed string `json:"completed"`
	Next      string `json:"next,omitempty"`
	GoalDone  bool   `json:"goal_done"`
}
