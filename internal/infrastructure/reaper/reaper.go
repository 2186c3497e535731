package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/cache"
	"agri-api/internal/infrastructure/metrics"
	"agri-api/internal/utils/platformerrors"
)

const (
	DefaultSchedule = "* * * * *"
	sweepTimeout    = 30 * time.Second
	lockName        = "run-reaper"
)

// Locker serializes sweeps across replicas.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(ctx context.Context) error) error
}

// Reaper fails runs that stayed pending or running past the stale timeout,
// which happens when a process dies mid-stream.
type Reaper struct {
	ctab       *crontab.Crontab
	runs       thread.RunRepository
	staleAfter time.Duration
	schedule   string
	locker     Locker
	now        func() time.Time
	log        zerolog.Logger
}

// New builds a reaper. locker may be nil for a single replica.
func New(runs thread.RunRepository, staleAfter time.Duration, schedule string, locker Locker, log zerolog.Logger) *Reaper {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Reaper{
		ctab:       crontab.New(),
		runs:       runs,
		staleAfter: staleAfter,
		schedule:   schedule,
		locker:     locker,
		now:        time.Now,
		log:        log.With().Str("component", "run-reaper").Logger(),
	}
}

// Run sweeps once on start and then on schedule until ctx is done.
func (r *Reaper) Run(ctx context.Context) error {
	r.sweepLogged(ctx)

	if err := r.ctab.AddJob(r.schedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		r.sweepLogged(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add run reaper job")
	}
	r.log.Info().Str("schedule", r.schedule).Dur("stale_after", r.staleAfter).Msg("run reaper scheduled")

	<-ctx.Done()
	r.ctab.Shutdown()
	return nil
}

// Sweep marks stale runs failed and returns how many were touched.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	var reaped int64
	sweep := func(ctx context.Context) error {
		cutoff := r.now().UTC().Add(-r.staleAfter)
		reason := fmt.Sprintf("run exceeded stale timeout of %s", r.staleAfter)
		n, err := r.runs.FailStaleRuns(ctx, cutoff, reason)
		reaped = n
		return err
	}

	var err error
	if r.locker == nil {
		err = sweep(ctx)
	} else {
		err = r.locker.WithLock(ctx, lockName, sweepTimeout, sweep)
		if errors.Is(err, cache.ErrLockHeld) {
			r.log.Debug().Msg("another replica holds the reaper lock")
			return 0, nil
		}
	}
	if err != nil {
		return 0, err
	}
	metrics.RecordReapedRuns(reaped)
	return reaped, nil
}

func (r *Reaper) sweepLogged(ctx context.Context) {
	n, err := r.Sweep(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("run reaper sweep failed")
		return
	}
	if n > 0 {
		r.log.Warn().Int64("runs", n).Msg("stale runs marked failed")
	}
}
