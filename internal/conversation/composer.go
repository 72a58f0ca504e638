// internal/conversation/composer.go
package conversation

import (
	"fmt"
	"strings"

	"github.com/aferrand/valet/api/schemas"
)

// Compose turns an Outcome into the turn's single response line plus a flag
// saying whether it may be spoken aloud. The parser's own summary text always
// wins over the personality template when present; templates exist only as a
// fallback. Responses carrying secret values are composed but never spoken.
func Compose(p schemas.Personality, o Outcome) (string, bool) {
	lead := o.Summary

	switch o.Kind {
	case OutcomeClarification:
		// Surfaced verbatim; the parser wrote the question.
		return o.Question, !o.Secret

	case OutcomeHelp:
		if lead == "" {
			lead = helpText(o.HelpTopic)
		}

	case OutcomeConfirmationRequested:
		if lead == "" {
			lead = fmt.Sprintf(template(p, o.Kind), o.Counts.Describe())
		}
		lead += " " + template(p, OutcomeConfirmReprompt)

	case OutcomeSaved:
		if lead == "" {
			if o.Counts.Total() == 0 {
				lead = template(p, OutcomeError)
			} else {
				lead = fmt.Sprintf(template(p, o.Kind), o.Counts.Describe())
			}
		}

	case OutcomeBreakStarted:
		if lead == "" {
			until := o.BreakUntil
			if until == "" {
				until = "you say otherwise"
			}
			lead = fmt.Sprintf(template(p, o.Kind), until)
		}

	default:
		if lead == "" {
			lead = template(p, o.Kind)
		}
	}

	parts := append([]string{lead}, o.Detail...)
	text := strings.TrimSpace(strings.Join(parts, " "))

	// Vault saves report their co-occurring items too.
	if o.Kind == OutcomeVault && o.Counts.Total() > 0 {
		text += fmt.Sprintf(" Also saved %s.", o.Counts.Describe())
	}

	return text, !o.Secret
}

func template(p schemas.Personality, kind OutcomeKind) string {
	if set, ok := templates[p]; ok {
		if tpl, ok := set[kind]; ok {
			return tpl
		}
	}
	return templates[schemas.PersonalityWarm][kind]
}
