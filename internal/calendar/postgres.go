// internal/calendar/postgres.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres provides a PostgreSQL implementation of the CalendarService
// interface. Tasks, events and reminders get a row each; reminders carry a
// done flag so FetchOpen and Reschedule can skip completed ones.
type Postgres struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgres creates a new backend instance and verifies the connection.
func NewPostgres(ctx context.Context, pool DBPool, logger *zap.Logger) (*Postgres, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{
		pool: pool,
		log:  logger.Named("calendar.postgres"),
	}, nil
}

func (p *Postgres) CreateTask(ctx context.Context, task schemas.TaskItem) error {
	query := `INSERT INTO tasks (id, title, due, notes, created_at) VALUES ($1, $2, $3, $4, NOW())`
	if _, err := p.pool.Exec(ctx, query, uuid.New().String(), task.Title, task.Due, task.Notes); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (p *Postgres) CreateEvent(ctx context.Context, event schemas.EventItem) error {
	query := `INSERT INTO events (id, title, start_at, end_at, location, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	if _, err := p.pool.Exec(ctx, query, uuid.New().String(), event.Title, event.Start, event.End, event.Location, event.Notes); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (p *Postgres) CreateReminder(ctx context.Context, reminder schemas.ReminderItem) error {
	query := `INSERT INTO reminders (id, title, trigger_at, notes, done, created_at) VALUES ($1, $2, $3, $4, FALSE, NOW())`
	if _, err := p.pool.Exec(ctx, query, uuid.New().String(), reminder.Title, reminder.Trigger, reminder.Notes); err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

func (p *Postgres) Reschedule(ctx context.Context, reminderID string, newDate time.Time) error {
	query := `UPDATE reminders SET trigger_at = $1 WHERE id = $2 AND done = FALSE`
	tag, err := p.pool.Exec(ctx, query, newDate, reminderID)
	if err != nil {
		return fmt.Errorf("failed to reschedule reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reschedule %q: %w", reminderID, schemas.ErrReminderNotFound)
	}
	return nil
}

func (p *Postgres) FetchOpen(ctx context.Context) ([]schemas.ReminderRef, error) {
	query := `SELECT id, title, trigger_at FROM reminders WHERE done = FALSE ORDER BY created_at`
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open reminders: %w", err)
	}
	defer rows.Close()

	var refs []schemas.ReminderRef
	for rows.Next() {
		var ref schemas.ReminderRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.Due); err != nil {
			return nil, fmt.Errorf("failed to scan reminder row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to iterate reminder rows: %w", err)
	}
	return refs, nil
}
