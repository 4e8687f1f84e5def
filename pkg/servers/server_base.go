package servers

import (
	"context"
	"sync"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"

	"event-reminder/pkg/resources"
)

// baseServer holds no listener; it keeps the process alive and closes its
// closables on Stop.
type baseServer struct {
	name         string
	closeChannel chan struct{}
	closeOnce    sync.Once
	closables    []resources.Closable
}

func NewBaseServer(name string, closables ...resources.Closable) lifecycle.Server {
	return &baseServer{
		name:         name,
		closeChannel: make(chan struct{}),
		closables:    closables,
	}
}

func (server *baseServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	<-server.closeChannel

	return nil
}

func (server *baseServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	server.closeOnce.Do(func() {
		for _, closable := range server.closables {
			closable.Close()
		}

		close(server.closeChannel)
	})

	return nil
}
