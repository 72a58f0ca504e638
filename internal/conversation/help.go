// internal/conversation/help.go
package conversation

var helpTopics = map[string]string{
	"": "I can save tasks, events and reminders, track goals, keep secrets in a vault, schedule daily check-ins and cover for you while you take a break. Ask for help on tasks, goals, vault, breaks or checkins for more.",
	"tasks": "Just tell me things like \"remind me to call mom tomorrow at 3\" or \"add a dentist appointment Friday at noon\". I'll read back what I heard and save it once you confirm.",
	"goals": "Say \"new goal: learn Spanish with milestones finish unit one, hold a conversation\". Later you can say \"I finished the first milestone\", \"pause that goal\" or ask \"how's my Spanish goal going\".",
	"vault": "I can remember private things: \"store my wifi password, it's hunter2\", \"what's my wifi password\", \"forget my locker code\". Values are encrypted and I never say them out loud.",
	"breaks": "Say \"take a break for 30 minutes\" or \"I'm away until 2pm\" and I'll stay quiet. \"I'm back\" ends it early.",
	"checkins": "I can nudge you up to three times a day, morning, afternoon and evening. I'll offer to set that up after your first save, and you can change times whenever you like.",
}

func helpText(topic string) string {
	if text, ok := helpTopics[topic]; ok {
		return text
	}
	return helpTopics[""]
}
