// internal/conversation/phase.go
package conversation

// Phase is the conversation state machine's current mode. Input capture only
// happens from Idle and AwaitingConfirmation; everything else either routes
// input to a sub-protocol or ignores it.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseListening
	PhaseProcessing
	PhaseSpeaking
	PhaseAwaitingConfirmation
	PhaseCheckInSetup
	PhaseBrainDump
	PhaseQuickNote
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseListening:
		return "listening"
	case PhaseProcessing:
		return "processing"
	case PhaseSpeaking:
		return "speaking"
	case PhaseAwaitingConfirmation:
		return "awaiting_confirmation"
	case PhaseCheckInSetup:
		return "checkin_setup"
	case PhaseBrainDump:
		return "brain_dump"
	case PhaseQuickNote:
		return "quick_note"
	default:
		return "unknown"
	}
}
