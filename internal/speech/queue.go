// internal/speech/queue.go
package speech

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// Queue serializes spoken output through a single consumer goroutine so
// utterances play in enqueue order and the caller never blocks on playback.
// When the buffer is full the line is dropped and logged rather than stalling
// the conversation.
type Queue struct {
	io     schemas.SpeechIO
	lines  chan string
	closed chan struct{}
	once   sync.Once
	log    *zap.Logger
}

func NewQueue(io schemas.SpeechIO, depth int, logger *zap.Logger) *Queue {
	if depth <= 0 {
		depth = 16
	}
	return &Queue{
		io:     io,
		lines:  make(chan string, depth),
		closed: make(chan struct{}),
		log:    logger.Named("speech.queue"),
	}
}

// Enqueue submits one line for playback without blocking.
func (q *Queue) Enqueue(text string) {
	if text == "" {
		return
	}
	select {
	case <-q.closed:
		q.log.Warn("Dropping line enqueued after close")
	case q.lines <- text:
	default:
		q.log.Warn("Playback queue full, dropping line", zap.Int("queued", len(q.lines)))
	}
}

// Run consumes the queue until the context is cancelled or Close is called.
// It drains lines already queued before returning on Close.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-q.lines:
			q.speak(ctx, line)
		case <-q.closed:
			for {
				select {
				case line := <-q.lines:
					q.speak(ctx, line)
				default:
					return nil
				}
			}
		}
	}
}

func (q *Queue) speak(ctx context.Context, line string) {
	if err := q.io.Speak(ctx, line); err != nil {
		q.log.Error("Playback failed", zap.Error(err))
	}
}

// Close stops Run after the queued lines drain. Safe to call more than once.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.closed) })
}
