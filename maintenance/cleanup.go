package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type expiredDeactivator interface {
	DeactivateExpired() (int64, error)
}

// Scheduler deactivates expired links on a nightly cadence so the redirect
// path never has to race a hard delete.
type Scheduler struct {
	c     *cron.Cron
	links expiredDeactivator
	log   *zap.Logger
}

func NewScheduler(links expiredDeactivator, log *zap.Logger) *Scheduler {
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
	return &Scheduler{c: c, links: links, log: log}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.c.AddFunc("0 3 * * *", s.sweep); err != nil {
		return err
	}
	s.c.Start()
	s.log.Info("maintenance scheduler started")

	// One sweep at startup so a restart never leaves stale links active.
	go s.sweep()

	go func() {
		<-ctx.Done()
		stopped := s.c.Stop()
		<-stopped.Done()
	}()
	return nil
}

func (s *Scheduler) sweep() {
	deactivated, err := s.links.DeactivateExpired()
	if err != nil {
		s.log.Error("failed to deactivate expired links", zap.Error(err))
		return
	}
	if deactivated > 0 {
		s.log.Info("deactivated expired links", zap.Int64("count", deactivated))
	}
}
