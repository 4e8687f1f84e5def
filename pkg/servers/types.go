package servers

import (
	"context"

	"github.com/qmdx00/lifecycle"
	"github.com/robfig/cron/v3"
)

var (
	_ Server = (*httpServer)(nil)
	_ Server = (*baseServer)(nil)
	_ Server = (*cronServer)(nil)
)

type Server interface {
	lifecycle.Server
}

var (
	_ CronServer = (*cron.Cron)(nil)
)

// CronServer is the scheduler contract of *cron.Cron. Stop returns a context
// that is done once running jobs have finished.
type CronServer interface {
	Start()
	Stop() context.Context
}
