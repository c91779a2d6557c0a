package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

type Runner func(ctx context.Context) error

// Run executes the service body under a signal-aware context and maps the
// outcome to a process exit code.
func Run(serviceName string, run Runner) int {
	log.Info().Str("service", serviceName).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx) }()

	select {
	case <-ctx.Done():
		log.Info().Str("service", serviceName).Msg("shutting down")
		// grace period for in-flight sends and the store
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
		}
		return 0
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("service", serviceName).Msg("failed")
			return 1
		}
		log.Info().Str("service", serviceName).Msg("stopped")
		return 0
	}
}
