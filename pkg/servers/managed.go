package servers

import (
	"context"
	"time"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"

	"event-reminder/pkg/resources"
)

// Manage runs server in its own goroutine. A Run error is sent to errChan; the
// returned StopFn stops the server within the given timeout.
func Manage(ctx context.Context, name string, server lifecycle.Server, errChan chan<- error) (lifecycle.Server, resources.StopFn, error) {
	if server == nil {
		return nil, resources.NoopStopFn, ErrServerFailedToStart(name, ErrNilServer)
	}

	go func() {
		err := server.Run(ctx)
		if err != nil {
			errChan <- err
		}
	}()

	stopFn := func(ctx context.Context, timeout time.Duration) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := server.Stop(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", name).Err(err).Msg("stop failed")
		}
	}

	return server, stopFn, nil
}
