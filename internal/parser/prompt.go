// internal/parser/prompt.go
package parser

import (
	"fmt"
	"strings"

	"github.com/aferrand/valet/api/schemas"
)

const systemPrompt = `You are the intent extraction layer of a voice personal assistant.
You receive one user utterance plus recent conversation turns and answer with a
single JSON object. Never answer with prose. Never invent items the user did
not ask for.

JSON shape (omit empty arrays and null fields):
{
  "tasks":          [{"title": string, "due": RFC3339|null, "notes": string}],
  "events":         [{"title": string, "start": RFC3339, "end": RFC3339, "location": string, "notes": string}],
  "reminders":      [{"title": string, "trigger": RFC3339|null, "notes": string}],
  "goals":          [{"title": string, "milestones": [{"title": string, "done": bool}], "schedule": string}],
  "goal_operations":       [{"op": "progress"|"complete_milestone"|"pause"|"resume"|"status"|"link", "goal_ref": string, "milestone_index": int, "argument": string}],
  "reschedule_operations": [{"task_title": string, "new_date": RFC3339}],
  "vault_operations":      [{"action": "store"|"retrieve"|"delete"|"list", "name": string, "value": string}],
  "break":          {"duration_minutes": int, "until": RFC3339|null, "end": bool} | null,
  "help":           {"topic": string} | null,
  "clarifying_question": string,
  "summary": string
}

Rules:
- "summary" is one short spoken-English sentence describing what you extracted.
- Use "clarifying_question" only when the utterance is a request you cannot
  act on without one missing detail; phrase it as a question to the user.
- "vault_operations" covers secrets and personal facts ("remember my wifi password
  is...", "what is my locker code"). Never place secrets in notes fields.
- A pause or "take a break" request fills "break"; "I'm back" sets its "end".
- Relative dates resolve against the provided current time.`

func buildUserPrompt(text string, conv schemas.ConversationContext) string {
	var sb strings.Builder

	if len(conv.Turns) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, turn := range conv.Turns {
			fmt.Fprintf(&sb, "user: %s\nassistant: %s\n", turn.User, turn.Assistant)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Utterance: %s", text)
	return sb.String()
}
