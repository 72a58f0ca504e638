// -- cmd/chat.go --
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aferrand/valet/api/schemas"
	"github.com/aferrand/valet/internal/breaks"
	"github.com/aferrand/valet/internal/calendar"
	"github.com/aferrand/valet/internal/config"
	"github.com/aferrand/valet/internal/conversation"
	"github.com/aferrand/valet/internal/goals"
	"github.com/aferrand/valet/internal/observability"
	"github.com/aferrand/valet/internal/parser"
	"github.com/aferrand/valet/internal/speech"
	"github.com/aferrand/valet/internal/vault"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Starts an interactive assistant session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			return runChat(ctx, cfg, logger)
		},
	}
}

func init() {
	rootCmd.AddCommand(newChatCmd())
}

func runChat(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	intentParser, err := parser.New(cfg.Parser, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	var cal schemas.CalendarService
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to create database pool: %w", err)
		}
		defer pool.Close()
		cal, err = calendar.NewPostgres(ctx, pool, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize calendar store: %w", err)
		}
	} else {
		cal = calendar.NewMemory(logger)
	}

	passphrase := cfg.Vault.Passphrase
	if passphrase == "" {
		// No configured passphrase: secrets live only for this session.
		passphrase = uuid.New().String()
		logger.Warn("VALET_VAULT_PASSPHRASE not set, using a throwaway session key")
	}
	secrets, err := vault.New(passphrase, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	console := speech.NewConsole(os.Stdout, logger)
	queue := speech.NewQueue(console, cfg.Speech.QueueDepth, logger)

	var speaker conversation.LineSpeaker
	if cfg.Speech.Enabled {
		speaker = queue
	}

	machine := conversation.New(cfg.Assistant, conversation.Deps{
		Parser:   intentParser,
		Calendar: cal,
		Vault:    secrets,
		Goals:    goals.NewTracker(logger),
		Breaks:   breaks.NewScheduler(logger),
		Speech:   console,
	}, speaker, logger)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Speech.Enabled {
		g.Go(func() error {
			if err := queue.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		defer queue.Close()
		return repl(ctx, machine, console, cfg.Speech.Enabled, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Session ended")
	return nil
}

// repl reads lines from stdin and feeds them to the machine until EOF, /quit
// or cancellation.
func repl(ctx context.Context, machine *conversation.Machine, console *speech.Console, speechEnabled bool, logger *zap.Logger) error {
	fmt.Println("valet ready. /note, /braindump, /listen, /stop, /quit")

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	say := func(reply string) {
		// When playback is enabled the queue prints lines itself.
		if !speechEnabled && reply != "" {
			fmt.Println(reply)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}

			switch {
			case strings.TrimSpace(line) == "/quit":
				return nil

			case strings.TrimSpace(line) == "/note":
				reply, err := machine.BeginQuickNote()
				if err != nil {
					logger.Warn("Quick note rejected", zap.Error(err))
					continue
				}
				say(reply)

			case strings.TrimSpace(line) == "/braindump":
				reply, err := machine.BeginBrainDump()
				if err != nil {
					logger.Warn("Brain dump rejected", zap.Error(err))
					continue
				}
				say(reply)

			case strings.TrimSpace(line) == "/listen":
				if err := machine.BeginListening(); err != nil {
					logger.Warn("Listening rejected", zap.Error(err))
				}

			case strings.TrimSpace(line) == "/stop":
				reply, err := machine.EndListening(ctx)
				if err != nil {
					logger.Warn("Stop listening failed", zap.Error(err))
					continue
				}
				say(reply)

			case machine.Phase() == conversation.PhaseListening:
				console.Hear(line)

			default:
				reply, err := machine.Submit(ctx, line)
				if err != nil {
					if errors.Is(err, conversation.ErrTurnInFlight) {
						fmt.Println("One moment, still working on the last one.")
						continue
					}
					return err
				}
				say(reply)
			}
		}
	}
}
