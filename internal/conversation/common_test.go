// internal/conversation/common_test.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
	"github.com/aferrand/valet/internal/config"
)

// -- Hand-written fakes for every machine collaborator --

type fakeParser struct {
	result *schemas.ParseResult
	err    error
	calls  int
}

func (f *fakeParser) Parse(_ context.Context, _ string, _ schemas.ConversationContext) (*schemas.ParseResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &schemas.ParseResult{}, nil
	}
	return f.result, nil
}

type fakeCalendar struct {
	mu         sync.Mutex
	tasks      []schemas.TaskItem
	events     []schemas.EventItem
	reminders  []schemas.ReminderItem
	open       []schemas.ReminderRef
	reschedule map[string]time.Time
	failTask   bool
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{reschedule: make(map[string]time.Time)}
}

func (f *fakeCalendar) CreateTask(_ context.Context, item schemas.TaskItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTask {
		return errors.New("task store unavailable")
	}
	f.tasks = append(f.tasks, item)
	return nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, item schemas.EventItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, item)
	return nil
}

func (f *fakeCalendar) CreateReminder(_ context.Context, item schemas.ReminderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, item)
	return nil
}

func (f *fakeCalendar) Reschedule(_ context.Context, reminderID string, newDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ref := range f.open {
		if ref.ID == reminderID {
			f.reschedule[reminderID] = newDate
			return nil
		}
	}
	return schemas.ErrReminderNotFound
}

func (f *fakeCalendar) FetchOpen(_ context.Context) ([]schemas.ReminderRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]schemas.ReminderRef(nil), f.open...), nil
}

type fakeVault struct {
	secrets map[string]string
}

func newFakeVault() *fakeVault {
	return &fakeVault{secrets: make(map[string]string)}
}

func (f *fakeVault) Store(_ context.Context, name, value string) error {
	f.secrets[name] = value
	return nil
}

func (f *fakeVault) Retrieve(_ context.Context, name string) (string, error) {
	v, ok := f.secrets[name]
	if !ok {
		return "", fmt.Errorf("secret %q: %w", name, schemas.ErrSecretNotFound)
	}
	return v, nil
}

func (f *fakeVault) Delete(_ context.Context, name string) error {
	if _, ok := f.secrets[name]; !ok {
		return schemas.ErrSecretNotFound
	}
	delete(f.secrets, name)
	return nil
}

func (f *fakeVault) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(f.secrets))
	for name := range f.secrets {
		names = append(names, name)
	}
	return names, nil
}

type fakeGoals struct {
	goals    map[string]*schemas.GoalItem
	advance  *schemas.MilestoneAdvance
	progress []string
}

func newFakeGoals() *fakeGoals {
	return &fakeGoals{goals: make(map[string]*schemas.GoalItem)}
}

func (f *fakeGoals) AddGoal(_ context.Context, goal schemas.GoalItem) (string, error) {
	id := fmt.Sprintf("goal-%d", len(f.goals)+1)
	goal.ID = id
	f.goals[id] = &goal
	return id, nil
}

func (f *fakeGoals) Find(_ context.Context, ref string) (*schemas.GoalItem, error) {
	if g, ok := f.goals[ref]; ok {
		return g, nil
	}
	for _, g := range f.goals {
		if g.Title == ref {
			return g, nil
		}
	}
	return nil, schemas.ErrGoalNotFound
}

func (f *fakeGoals) RecordProgress(_ context.Context, goalID string) error {
	f.progress = append(f.progress, goalID)
	return nil
}

func (f *fakeGoals) CompleteMilestone(_ context.Context, _ string, _ int) (*schemas.MilestoneAdvance, error) {
	if f.advance == nil {
		return nil, errors.New("no milestones")
	}
	return f.advance, nil
}

func (f *fakeGoals) Pause(_ context.Context, goalID string) error {
	f.goals[goalID].Paused = true
	return nil
}

func (f *fakeGoals) Resume(_ context.Context, goalID string) error {
	f.goals[goalID].Paused = false
	return nil
}

func (f *fakeGoals) LinkSchedule(_ context.Context, goalID, schedule string) error {
	f.goals[goalID].Schedule = schedule
	return nil
}

type fakeBreaks struct {
	active        bool
	until         time.Time
	checkIns      [3]schemas.CheckInSlot
	scheduleCalls int
}

func (f *fakeBreaks) StartBreak(_ context.Context, d time.Duration) error {
	f.active = true
	f.until = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC).Add(d)
	return nil
}

func (f *fakeBreaks) StartBreakUntil(_ context.Context, t time.Time) error {
	f.active = true
	f.until = t
	return nil
}

func (f *fakeBreaks) EndBreak(_ context.Context) error {
	f.active = false
	return nil
}

func (f *fakeBreaks) Active(_ context.Context) (bool, time.Time, error) {
	return f.active, f.until, nil
}

func (f *fakeBreaks) ScheduleDailyCheckIns(_ context.Context, slots [3]schemas.CheckInSlot) error {
	f.scheduleCalls++
	f.checkIns = slots
	return nil
}

func (f *fakeBreaks) CheckIns(_ context.Context) ([3]schemas.CheckInSlot, error) {
	return f.checkIns, nil
}

func (f *fakeBreaks) CancelAll(_ context.Context) error {
	f.checkIns = [3]schemas.CheckInSlot{}
	f.active = false
	return nil
}

type fakeSpeech struct {
	spoken     []string
	transcript string
	listening  bool
}

func (f *fakeSpeech) Speak(_ context.Context, text string) error {
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeech) StartListening() error {
	f.listening = true
	return nil
}

func (f *fakeSpeech) StopListening() (string, error) {
	f.listening = false
	return f.transcript, nil
}

type captureSpeaker struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureSpeaker) Enqueue(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, text)
}

// testHarness bundles a machine with its fakes.
type testHarness struct {
	machine  *Machine
	parser   *fakeParser
	calendar *fakeCalendar
	vault    *fakeVault
	goals    *fakeGoals
	breaks   *fakeBreaks
	speech   *fakeSpeech
	speaker  *captureSpeaker
}

func newHarness(result *schemas.ParseResult) *testHarness {
	h := &testHarness{
		parser:   &fakeParser{result: result},
		calendar: newFakeCalendar(),
		vault:    newFakeVault(),
		goals:    newFakeGoals(),
		breaks:   &fakeBreaks{},
		speech:   &fakeSpeech{},
		speaker:  &captureSpeaker{},
	}
	h.machine = New(
		config.AssistantConfig{
			Personality:         schemas.PersonalityWarm,
			HistoryWindow:       6,
			ParserRatePerMinute: 600,
		},
		Deps{
			Parser:   h.parser,
			Calendar: h.calendar,
			Vault:    h.vault,
			Goals:    h.goals,
			Breaks:   h.breaks,
			Speech:   h.speech,
		},
		h.speaker,
		zap.NewNop(),
	)
	return h
}
