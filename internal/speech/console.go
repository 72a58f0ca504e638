// internal/speech/console.go

// Package speech carries spoken output and the microphone boundary. The only
// shipped transport prints to a writer; the playback queue in queue.go keeps
// the conversation core from ever blocking on it.
package speech

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Console is a SpeechIO that writes spoken lines to a writer and collects
// "heard" text pushed through Hear, standing in for a microphone.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	listening bool
	heard     []string
	log       *zap.Logger
}

func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	return &Console{out: out, log: logger.Named("speech.console")}
}

func (c *Console) Speak(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "%s\n", text); err != nil {
		return fmt.Errorf("failed to write spoken line: %w", err)
	}
	return nil
}

func (c *Console) StartListening() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listening {
		return fmt.Errorf("already listening")
	}
	c.listening = true
	c.heard = c.heard[:0]
	c.log.Debug("Listening started")
	return nil
}

// Hear feeds one line of input while listening; outside a listening window it
// is dropped.
func (c *Console) Hear(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listening {
		c.heard = append(c.heard, line)
	}
}

// StopListening ends the window and returns everything heard as one
// utterance.
func (c *Console) StopListening() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.listening {
		return "", fmt.Errorf("not listening")
	}
	c.listening = false
	transcript := strings.TrimSpace(strings.Join(c.heard, " "))
	c.heard = nil
	c.log.Debug("Listening stopped", zap.Int("chars", len(transcript)))
	return transcript, nil
}
