// internal/calendar/memory.go
package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// Memory is an in-process CalendarService. It is the default backend when no
// database is configured; everything lives for the duration of the session.
type Memory struct {
	mu        sync.Mutex
	tasks     []schemas.TaskItem
	events    []schemas.EventItem
	reminders []storedReminder
	log       *zap.Logger
}

type storedReminder struct {
	ID   string
	Item schemas.ReminderItem
	Done bool
}

func NewMemory(logger *zap.Logger) *Memory {
	return &Memory{log: logger.Named("calendar.memory")}
}

func (m *Memory) CreateTask(_ context.Context, task schemas.TaskItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	m.log.Debug("Task created", zap.String("title", task.Title))
	return nil
}

func (m *Memory) CreateEvent(_ context.Context, event schemas.EventItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	m.log.Debug("Event created", zap.String("title", event.Title))
	return nil
}

func (m *Memory) CreateReminder(_ context.Context, reminder schemas.ReminderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, storedReminder{
		ID:   uuid.New().String(),
		Item: reminder,
	})
	m.log.Debug("Reminder created", zap.String("title", reminder.Title))
	return nil
}

// Reschedule moves an open reminder's trigger to newDate.
func (m *Memory) Reschedule(_ context.Context, reminderID string, newDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reminders {
		if m.reminders[i].ID == reminderID && !m.reminders[i].Done {
			t := newDate
			m.reminders[i].Item.Trigger = &t
			return nil
		}
	}
	return fmt.Errorf("reschedule %q: %w", reminderID, schemas.ErrReminderNotFound)
}

// FetchOpen lists reminders that have not been completed, in creation order.
func (m *Memory) FetchOpen(_ context.Context) ([]schemas.ReminderRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]schemas.ReminderRef, 0, len(m.reminders))
	for _, r := range m.reminders {
		if r.Done {
			continue
		}
		refs = append(refs, schemas.ReminderRef{
			ID:    r.ID,
			Title: r.Item.Title,
			Due:   r.Item.Trigger,
		})
	}
	return refs, nil
}
