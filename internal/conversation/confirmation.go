// internal/conversation/confirmation.go
package conversation

import (
	"context"
	"strings"
)

// The classifier is substring-based on purpose: "yes please" and "okay sure"
// both read as affirmative without tokenizing. Affirmative is checked first,
// so an utterance matching both sets resolves affirmative.
var (
	affirmativeWords = []string{"yes", "yeah", "yep", "sure", "okay", "ok", "confirm", "save", "do it"}
	negativeWords    = []string{"no", "nope", "cancel", "start over", "try again", "nevermind"}
)

type verdict int

const (
	verdictNeither verdict = iota
	verdictAffirmative
	verdictNegative
)

func classify(utterance string) verdict {
	lower := strings.ToLower(utterance)
	for _, w := range affirmativeWords {
		if strings.Contains(lower, w) {
			return verdictAffirmative
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return verdictNegative
		}
	}
	return verdictNeither
}

// resolveConfirmation consumes one utterance while a confirmation is pending.
// Affirmative saves the whole pending batch, negative discards it, anything
// else re-prompts and keeps the batch pending. Must be called with m.mu held.
func (m *Machine) resolveConfirmation(ctx context.Context, utterance string) Outcome {
	switch classify(utterance) {
	case verdictAffirmative:
		pending := m.pending
		m.pending = nil
		m.phase = PhaseIdle
		counts := m.saveItems(ctx, pending)
		return Outcome{Kind: OutcomeSaved, Counts: counts}

	case verdictNegative:
		m.pending = nil
		m.phase = PhaseIdle
		return Outcome{Kind: OutcomeCancelled}

	default:
		return Outcome{Kind: OutcomeConfirmReprompt}
	}
}
