// internal/conversation/personality.go
package conversation

import "github.com/aferrand/valet/api/schemas"

// templates holds the fallback line per personality per outcome. It is plain
// data so adding a voice means adding a map entry, not new branches.
var templates = map[schemas.Personality]map[OutcomeKind]string{
	schemas.PersonalityWarm: {
		OutcomeFallback:              "Sorry, I didn't get that. Mind rephrasing?",
		OutcomeBreakStarted:          "Enjoy your break! I'll stay quiet until %s.",
		OutcomeBreakEnded:            "Welcome back! Picking up where we left off.",
		OutcomeHelp:                  "Happy to help!",
		OutcomeGoalsAdded:            "Love it, new goal saved.",
		OutcomeGoalOps:               "Here's where things stand.",
		OutcomeRescheduled:           "All rescheduled.",
		OutcomeVault:                 "Vault updated.",
		OutcomeConfirmationRequested: "I heard %s.",
		OutcomeSaved:                 "All set, I saved %s.",
		OutcomeCancelled:             "Okay, let's start over. What would you like?",
		OutcomeConfirmReprompt:       "Should I save that? Yes or no.",
		OutcomeError:                 "Sorry, something went wrong on my end. Let's try that again.",
	},
	schemas.PersonalityConcise: {
		OutcomeFallback:              "Didn't catch that.",
		OutcomeBreakStarted:          "Break until %s.",
		OutcomeBreakEnded:            "Break over.",
		OutcomeHelp:                  "Help:",
		OutcomeGoalsAdded:            "Goal saved.",
		OutcomeGoalOps:               "Goal status:",
		OutcomeRescheduled:           "Rescheduled.",
		OutcomeVault:                 "Vault updated.",
		OutcomeConfirmationRequested: "Heard %s.",
		OutcomeSaved:                 "Saved %s.",
		OutcomeCancelled:             "Cancelled.",
		OutcomeConfirmReprompt:       "Save? Yes or no.",
		OutcomeError:                 "Something failed. Try again.",
	},
	schemas.PersonalityCoach: {
		OutcomeFallback:              "I missed that one. Give it to me again?",
		OutcomeBreakStarted:          "Rest up. I'm quiet until %s.",
		OutcomeBreakEnded:            "Good, you're back. Let's keep the momentum.",
		OutcomeHelp:                  "Here's the playbook.",
		OutcomeGoalsAdded:            "That's a real goal now. Let's get after it.",
		OutcomeGoalOps:               "Progress report:",
		OutcomeRescheduled:           "Schedule adjusted. Stay on it.",
		OutcomeVault:                 "Locked in.",
		OutcomeConfirmationRequested: "I've got %s lined up.",
		OutcomeSaved:                 "Done. %s on the board.",
		OutcomeCancelled:             "Scrapped. What's the real plan?",
		OutcomeConfirmReprompt:       "Commit to it? Yes or no.",
		OutcomeError:                 "Hit a snag on my side. Run it back.",
	},
}
