package servers

import (
	"context"
	"sync"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"
)

type cronServer struct {
	name         string
	internal     CronServer
	closeChannel chan struct{}
	closeOnce    sync.Once
	mu           sync.Mutex
	started      bool
	stopped      bool
}

func NewCronServer(name string, scheduler CronServer) lifecycle.Server {
	return &cronServer{
		name:         name,
		internal:     scheduler,
		closeChannel: make(chan struct{}),
	}
}

func (server *cronServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	server.mu.Lock()
	if server.stopped {
		server.mu.Unlock()
		return nil
	}
	server.internal.Start()
	server.started = true
	server.mu.Unlock()

	<-server.closeChannel

	return nil
}

// Stop waits for a job in progress unless ctx ends first. A server stopped
// before Run never starts its scheduler.
func (server *cronServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	server.mu.Lock()
	server.stopped = true
	started := server.started
	server.mu.Unlock()

	var err error

	server.closeOnce.Do(func() {
		defer close(server.closeChannel)

		if !started {
			return
		}

		select {
		case <-server.internal.Stop().Done():
		case <-ctx.Done():
			log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", server.name).Err(ctx.Err()).Msg("failed to stop")
			err = ErrServerFailedToStop(server.name, ctx.Err())
		}
	})

	return err
}
