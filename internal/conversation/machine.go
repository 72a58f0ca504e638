// internal/conversation/machine.go

// Package conversation is the turn-taking core of the assistant: a single
// state machine that routes each completed utterance through the intent
// parser, the confirmation protocol or the check-in wizard, executes the
// resulting actions and composes exactly one response line per turn.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aferrand/valet/api/schemas"
	"github.com/aferrand/valet/internal/config"
)

// ErrTurnInFlight is returned when Submit is called while a previous turn is
// still being processed. Turns are never interleaved or queued.
var ErrTurnInFlight = errors.New("a turn is already in flight")

// LineSpeaker receives composed response lines for playback. Enqueue must not
// block; playback is fire-and-forget relative to the machine.
type LineSpeaker interface {
	Enqueue(text string)
}

// Deps are the collaborators injected into the machine.
type Deps struct {
	Parser   schemas.IntentParser
	Calendar schemas.CalendarService
	Vault    schemas.SecretVault
	Goals    schemas.GoalTracker
	Breaks   schemas.BreakScheduler
	Speech   schemas.SpeechIO
}

// Machine is the conversation state machine. One logical conversation per
// instance; at most one turn in flight.
type Machine struct {
	mu       sync.Mutex
	inFlight bool

	phase   Phase
	pending *schemas.ParseResult
	wizard  *wizardState

	// savedOnce flips on the first confirmed save; checkInDeclined is a
	// permanent session record of the user declining check-in setup.
	savedOnce       bool
	checkInDeclined bool

	personality   schemas.Personality
	turns         []schemas.Turn
	historyWindow int

	dump []string

	deps    Deps
	limiter *rate.Limiter
	speaker LineSpeaker
	log     *zap.Logger
}

// New builds a machine. speaker may be nil when no playback is wanted.
func New(cfg config.AssistantConfig, deps Deps, speaker LineSpeaker, logger *zap.Logger) *Machine {
	perMinute := cfg.ParserRatePerMinute
	if perMinute <= 0 {
		perMinute = 20
	}
	personality := cfg.Personality
	if !personality.Valid() {
		personality = schemas.PersonalityWarm
	}
	window := cfg.HistoryWindow
	if window < 0 {
		window = 0
	}

	return &Machine{
		phase:         PhaseIdle,
		personality:   personality,
		historyWindow: window,
		deps:          deps,
		limiter:       rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		speaker:       speaker,
		log:           logger.Named("conversation"),
	}
}

// Phase reports the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Submit is the single entry point for one completed turn of user input. It
// returns the composed response line, which may be empty when the utterance
// was silently ignored.
func (m *Machine) Submit(ctx context.Context, utterance string) (string, error) {
	utterance = strings.TrimSpace(utterance)

	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return "", ErrTurnInFlight
	}
	m.inFlight = true
	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	if utterance == "" {
		// Empty input is dropped silently; the one exception is an empty
		// transcript ending a listening window.
		if m.phase == PhaseListening {
			m.phase = PhaseIdle
		}
		m.mu.Unlock()
		return "", nil
	}

	switch m.phase {
	case PhaseAwaitingConfirmation:
		if m.pending != nil {
			outcome := m.resolveConfirmation(ctx, utterance)
			reply := m.respondLocked(ctx, outcome)
			m.mu.Unlock()
			return reply, nil
		}
		fallthrough

	case PhaseIdle:
		m.phase = PhaseProcessing
		m.mu.Unlock()
		return m.runParserTurn(ctx, utterance)

	case PhaseCheckInSetup:
		reply := m.runWizard(ctx, utterance)
		m.speakLocked(reply, true)
		m.mu.Unlock()
		return reply, nil

	case PhaseBrainDump:
		reply := m.runBrainDump(ctx, utterance)
		m.speakLocked(reply, true)
		m.mu.Unlock()
		return reply, nil

	case PhaseQuickNote:
		reply := m.runQuickNote(ctx, utterance)
		m.speakLocked(reply, true)
		m.mu.Unlock()
		return reply, nil

	default:
		// Processing, Speaking, Listening: input here means the UI gating
		// slipped; drop it.
		m.log.Debug("Utterance ignored", zap.Stringer("phase", m.phase))
		m.mu.Unlock()
		return "", nil
	}
}

// runParserTurn owns the parser path. Called without the lock held, with the
// phase already set to Processing so no second turn can slip in.
func (m *Machine) runParserTurn(ctx context.Context, utterance string) (string, error) {
	m.mu.Lock()
	conv := schemas.ConversationContext{
		Personality: m.personality,
		Turns:       append([]schemas.Turn(nil), m.turns...),
	}
	m.mu.Unlock()

	if !m.limiter.Allow() {
		m.log.Warn("Parser rate limit hit, dropping turn")
		m.mu.Lock()
		defer m.mu.Unlock()
		m.phase = PhaseIdle
		return m.respondLocked(ctx, Outcome{Kind: OutcomeError}), nil
	}

	result, err := m.deps.Parser.Parse(ctx, utterance, conv)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		// One generic line, back to Idle, no retry.
		m.log.Error("Parser call failed", zap.Error(err))
		m.phase = PhaseIdle
		return m.respondLocked(ctx, Outcome{Kind: OutcomeError}), nil
	}

	outcome := m.dispatch(ctx, result)
	if outcome.Kind == OutcomeConfirmationRequested {
		m.pending = result
		m.phase = PhaseAwaitingConfirmation
	} else {
		m.phase = PhaseIdle
	}

	reply := m.respondLocked(ctx, outcome)
	m.recordTurn(utterance, reply)
	return reply, nil
}

// respondLocked composes the outcome, dispatches playback and, when a
// confirmed save just happened, auto-enters the check-in wizard. Must be
// called with m.mu held.
func (m *Machine) respondLocked(ctx context.Context, outcome Outcome) string {
	prev := m.phase
	m.phase = PhaseSpeaking

	text, speak := Compose(m.personality, outcome)
	m.speakLocked(text, speak)

	m.phase = prev

	if outcome.Kind == OutcomeSaved && outcome.Counts.Total() > 0 && !m.savedOnce {
		m.savedOnce = true
		if prompt := m.maybeEnterWizard(ctx); prompt != "" {
			m.speakLocked(prompt, true)
			text += "\n" + prompt
		}
	}
	return text
}

// maybeEnterWizard starts check-in setup after the first confirmed save when
// no slot is enabled and the user has not declined. Must hold m.mu.
func (m *Machine) maybeEnterWizard(ctx context.Context) string {
	if m.checkInDeclined {
		return ""
	}
	slots, err := m.deps.Breaks.CheckIns(ctx)
	if err != nil {
		m.log.Error("Failed to read check-in schedule", zap.Error(err))
		return ""
	}
	for _, slot := range slots {
		if slot.Enabled {
			return ""
		}
	}
	m.wizard = &wizardState{step: stepAskIfWant}
	m.phase = PhaseCheckInSetup
	return wizardPrompt(stepAskIfWant)
}

func (m *Machine) speakLocked(text string, speak bool) {
	if speak && m.speaker != nil && text != "" {
		m.speaker.Enqueue(text)
	}
}

func (m *Machine) recordTurn(user, assistant string) {
	if m.historyWindow == 0 {
		return
	}
	m.turns = append(m.turns, schemas.Turn{User: user, Assistant: assistant})
	if len(m.turns) > m.historyWindow {
		m.turns = m.turns[len(m.turns)-m.historyWindow:]
	}
}

// BeginListening opens a speech capture window. Only valid from Idle.
func (m *Machine) BeginListening() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseIdle {
		return fmt.Errorf("cannot listen while %s", m.phase)
	}
	if err := m.deps.Speech.StartListening(); err != nil {
		return err
	}
	m.phase = PhaseListening
	return nil
}

// EndListening closes the capture window and submits the transcript as a
// turn. An empty transcript just returns the machine to Idle.
func (m *Machine) EndListening(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.phase != PhaseListening {
		m.mu.Unlock()
		return "", fmt.Errorf("not listening")
	}
	transcript, err := m.deps.Speech.StopListening()
	m.phase = PhaseIdle
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if strings.TrimSpace(transcript) == "" {
		return "", nil
	}
	return m.Submit(ctx, transcript)
}

// BeginBrainDump starts free-form capture: every line is held until the user
// says "done", then each becomes a task without confirmation.
func (m *Machine) BeginBrainDump() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseIdle {
		return "", fmt.Errorf("cannot start a brain dump while %s", m.phase)
	}
	m.phase = PhaseBrainDump
	m.dump = nil
	line := "Go ahead, tell me everything. Say \"done\" when you're finished."
	m.speakLocked(line, true)
	return line, nil
}

func (m *Machine) runBrainDump(ctx context.Context, utterance string) string {
	if !strings.EqualFold(utterance, "done") {
		m.dump = append(m.dump, utterance)
		return "Got it. What else?"
	}

	saved := 0
	for _, line := range m.dump {
		if err := m.deps.Calendar.CreateTask(ctx, schemas.TaskItem{Title: line}); err != nil {
			m.log.Error("Failed to save brain dump line", zap.Error(err))
			continue
		}
		saved++
	}
	m.dump = nil
	m.phase = PhaseIdle

	if saved == 0 {
		return "Nothing to save. Back to normal."
	}
	return fmt.Sprintf("Captured %d thoughts as tasks.", saved)
}

// BeginQuickNote captures exactly one utterance as a task, no confirmation.
func (m *Machine) BeginQuickNote() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseIdle {
		return "", fmt.Errorf("cannot take a quick note while %s", m.phase)
	}
	m.phase = PhaseQuickNote
	line := "What's the note?"
	m.speakLocked(line, true)
	return line, nil
}

func (m *Machine) runQuickNote(ctx context.Context, utterance string) string {
	m.phase = PhaseIdle
	if err := m.deps.Calendar.CreateTask(ctx, schemas.TaskItem{Title: utterance}); err != nil {
		m.log.Error("Failed to save quick note", zap.Error(err))
		return "I couldn't save that note, sorry."
	}
	return "Noted."
}
