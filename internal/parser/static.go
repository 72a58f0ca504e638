// internal/parser/static.go
package parser

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// Static is a keyword parser for offline use and demos. It recognizes a small
// set of utterance shapes and extracts at most one item per turn; anything it
// does not recognize comes back as an empty ParseResult.
type Static struct {
	logger *zap.Logger
}

func NewStatic(logger *zap.Logger) *Static {
	return &Static{logger: logger.Named("parser.static")}
}

func (s *Static) Parse(_ context.Context, text string, _ schemas.ConversationContext) (*schemas.ParseResult, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	result := &schemas.ParseResult{}

	switch {
	case lower == "i'm back" || lower == "im back" || lower == "end break":
		result.Break = &schemas.BreakCommand{End: true}
		result.Summary = "Ending your break."

	case strings.HasPrefix(lower, "take a break") || strings.HasPrefix(lower, "pause for"):
		minutes := 15
		for _, tok := range strings.Fields(lower) {
			if n, err := strconv.Atoi(tok); err == nil && n > 0 {
				minutes = n
				break
			}
		}
		result.Break = &schemas.BreakCommand{DurationMinutes: minutes}
		result.Summary = "Taking a break."

	case lower == "help" || strings.HasPrefix(lower, "what can you do"):
		result.Help = &schemas.HelpRequest{}
		result.Summary = "Showing help."

	case strings.HasPrefix(lower, "remind me to "):
		title := strings.TrimSpace(text[len("remind me to "):])
		result.Reminders = []schemas.ReminderItem{{Title: title}}
		result.Summary = "One reminder: " + title + "."

	case strings.HasPrefix(lower, "add a task ") || strings.HasPrefix(lower, "add task "):
		title := strings.TrimSpace(text[strings.Index(lower, "task ")+len("task "):])
		result.Tasks = []schemas.TaskItem{{Title: title}}
		result.Summary = "One task: " + title + "."

	default:
		s.logger.Debug("No static pattern matched", zap.String("text", text))
	}

	return result, nil
}
