package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eduymaz/aller-mind/internal/pkg/dbctx"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

const runTimeout = time.Minute

// Pruner deletes audit rows created before the cutoff.
type Pruner interface {
	DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type Job struct {
	pruner Pruner
	keep   time.Duration
	log    *logger.Logger
	now    func() time.Time
}

func NewJob(pruner Pruner, keep time.Duration, baseLog *logger.Logger) *Job {
	return &Job{
		pruner: pruner,
		keep:   keep,
		log:    baseLog.With("component", "RetentionJob"),
		now:    time.Now,
	}
}

// RunOnce prunes everything older than the retention window. A non-positive
// window keeps everything.
func (j *Job) RunOnce(ctx context.Context) (int64, error) {
	if j.keep <= 0 {
		return 0, nil
	}
	cutoff := j.now().UTC().Add(-j.keep)
	n, err := j.pruner.DeleteOlderThan(dbctx.Of(ctx), cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}

// Start schedules the job on a standard five-field cron spec. Stop the
// returned scheduler on shutdown.
func (j *Job) Start(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		n, err := j.RunOnce(ctx)
		if err != nil {
			j.log.Warn("retention run failed", "error", err)
			return
		}
		j.log.Debug("retention run finished", "deleted", n)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule retention %q: %w", spec, err)
	}
	c.Start()
	j.log.Info("retention scheduled", "spec", spec, "keep", j.keep.String())
	return c, nil
}
