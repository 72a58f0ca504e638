// internal/conversation/wizard.go
package conversation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// The check-in setup wizard is a strictly linear dialog: one yes/no question
// per slot, one time question per accepted slot, then a single commit. It is
// entered automatically at most once per session, right after the first
// confirmed save, and only when no slot is enabled and the user has not
// declined before.

type wizardStep int

const (
	stepAskIfWant wizardStep = iota
	stepAskMorning
	stepAskMorningTime
	stepAskAfternoon
	stepAskAfternoonTime
	stepAskEvening
	stepAskEveningTime
	stepDone
)

const (
	slotMorning = iota
	slotAfternoon
	slotEvening
)

type wizardState struct {
	step  wizardStep
	slots [3]schemas.CheckInSlot
}

func wizardPrompt(step wizardStep) string {
	switch step {
	case stepAskIfWant:
		return "Want me to check in with you daily? I can nudge you in the morning, afternoon and evening."
	case stepAskMorning:
		return "Should I check in with you in the morning?"
	case stepAskMorningTime:
		return "What time in the morning?"
	case stepAskAfternoon:
		return "How about the afternoon?"
	case stepAskAfternoonTime:
		return "What time in the afternoon?"
	case stepAskEvening:
		return "And the evening?"
	case stepAskEveningTime:
		return "What time in the evening?"
	default:
		return ""
	}
}

// runWizard consumes one utterance while the wizard is active and returns the
// next line to say. Must be called with m.mu held.
func (m *Machine) runWizard(ctx context.Context, utterance string) string {
	w := m.wizard

	switch w.step {
	case stepAskIfWant:
		switch classify(utterance) {
		case verdictAffirmative:
			w.step = stepAskMorning
		case verdictNegative:
			// A decline here is permanent for the session; the wizard is
			// never auto-entered again.
			m.checkInDeclined = true
			m.wizard = nil
			m.phase = PhaseIdle
			m.log.Info("Check-in setup declined")
			return "No problem, I won't bug you. You can set up check-ins any time."
		default:
			return wizardPrompt(stepAskIfWant)
		}

	case stepAskMorning, stepAskAfternoon, stepAskEvening:
		slot, timeStep, nextAsk := wizardSlotFor(w.step)
		switch classify(utterance) {
		case verdictAffirmative:
			w.slots[slot].Enabled = true
			w.step = timeStep
		case verdictNegative:
			w.step = nextAsk
		default:
			return wizardPrompt(w.step)
		}

	case stepAskMorningTime, stepAskAfternoonTime, stepAskEveningTime:
		slot := slotMorning
		switch w.step {
		case stepAskAfternoonTime:
			slot = slotAfternoon
		case stepAskEveningTime:
			slot = slotEvening
		}
		// An unparseable time keeps the slot enabled with its default and
		// moves on; it never blocks the wizard.
		if tod, ok := ParseClock(utterance); ok {
			w.slots[slot].Time = &tod
		}
		w.step++ // each time step is immediately followed by the next ask step or done
	}

	if w.step == stepDone {
		return m.finishWizard(ctx)
	}
	return wizardPrompt(w.step)
}

// wizardSlotFor maps an ask step to its slot index, time step and the ask
// step that follows when the slot is declined.
func wizardSlotFor(step wizardStep) (slot int, timeStep, nextAsk wizardStep) {
	switch step {
	case stepAskMorning:
		return slotMorning, stepAskMorningTime, stepAskAfternoon
	case stepAskAfternoon:
		return slotAfternoon, stepAskAfternoonTime, stepAskEvening
	default:
		return slotEvening, stepAskEveningTime, stepDone
	}
}

// finishWizard commits all three slots in one scheduler call and composes
// the closing summary line.
func (m *Machine) finishWizard(ctx context.Context) string {
	w := m.wizard
	m.wizard = nil
	m.phase = PhaseIdle

	if err := m.deps.Breaks.ScheduleDailyCheckIns(ctx, w.slots); err != nil {
		m.log.Error("Failed to schedule check-ins", zap.Error(err))
		return "I couldn't save your check-in schedule, sorry. Try again later."
	}

	names := [3]string{"morning", "afternoon", "evening"}
	var enabled []string
	for i, slot := range w.slots {
		if !slot.Enabled {
			continue
		}
		if slot.Time != nil {
			enabled = append(enabled, fmt.Sprintf("%s at %s", names[i], slot.Time))
		} else {
			enabled = append(enabled, names[i])
		}
	}
	if len(enabled) == 0 {
		return "Okay, no check-ins set."
	}
	return fmt.Sprintf("Done! I'll check in with you every %s.", joinEnglish(enabled))
}
