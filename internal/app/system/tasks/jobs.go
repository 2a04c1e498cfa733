// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ActivityPurger deletes login activity older than a cutoff.
type ActivityPurger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventCompleter marks published events whose date has passed as completed.
type EventCompleter interface {
	CompletePast(ctx context.Context, now time.Time) (int64, error)
}

// LoginActivityRetentionJob removes login activity older than retention.
// A zero retention disables the job.
func LoginActivityRetentionJob(store ActivityPurger, retention time.Duration, logger *zap.Logger) Job {
	interval := time.Hour
	if retention <= 0 {
		interval = 0
	}
	return Job{
		Name:     "login-activity-retention",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := store.DeleteBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged old login activity",
					zap.Int64("deleted", n),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// EventCompletionJob closes out published events once their date is more
// than a day past.
func EventCompletionJob(store EventCompleter, logger *zap.Logger) Job {
	return Job{
		Name:     "event-completion",
		Interval: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := store.CompletePast(ctx, time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("marked past events completed", zap.Int64("count", n))
			}
			return nil
		},
	}
}
