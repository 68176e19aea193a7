package app

import (
	"context"
	"time"

	"github.com/quillspace/core/internal/modules/auth"
	pkgcron "github.com/quillspace/core/internal/pkg/cron"
	"go.uber.org/zap"
)

func (a *App) registerCronJobs(ctx context.Context) {
	authSvc := auth.NewService(a.db, nil, a.cfg.ClientURL, a.logger)

	a.sched.Register(pkgcron.Job{
		Name:        "purge_reset_tokens",
		Description: "Clear expired password reset tokens",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := authSvc.PurgeExpiredResetTokens()
			if err != nil {
				return err
			}
			if n > 0 {
				a.logger.Info("purged reset tokens", zap.Int64("count", n))
			}
			return nil
		},
	})

	go a.sched.Start(ctx)
}
