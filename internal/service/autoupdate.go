package service

import (
	"context"
	"time"

	"github.com/voyagen/popcornplayer/internal/config"
	"go.uber.org/zap"
)

// retryFloor is the shortest gap between two scheduled runs, so a source that
// keeps failing does not get hammered.
const retryFloor = time.Hour

// AutoUpdater refreshes all playlists on the configured schedule.
type AutoUpdater struct {
	svc      *Service
	freq     config.UpdateFrequency
	interval time.Duration
	log      *zap.Logger
}

// NewAutoUpdater returns an updater for freq.
func NewAutoUpdater(svc *Service, freq config.UpdateFrequency) *AutoUpdater {
	var interval time.Duration
	switch freq {
	case config.UpdateDaily:
		interval = 24 * time.Hour
	case config.UpdateEvery2Days:
		interval = 48 * time.Hour
	}
	return &AutoUpdater{svc: svc, freq: freq, interval: interval, log: svc.log.Named("autoupdate")}
}

// Run blocks until ctx is done. "startup" refreshes once and returns; "off"
// returns immediately.
func (u *AutoUpdater) Run(ctx context.Context) {
	switch u.freq {
	case config.UpdateStartup:
		u.log.Info("refreshing playlists at startup")
		_, _ = u.svc.RefreshAll(ctx)
		return
	case config.UpdateDaily, config.UpdateEvery2Days:
	default:
		return
	}

	var lastRun time.Time
	for {
		wait := u.delay(ctx, lastRun)
		u.log.Info("next automatic update scheduled", zap.Duration("in", wait))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		lastRun = u.svc.now()
		_, _ = u.svc.RefreshAll(ctx)
	}
}

// delay returns how long to wait before the next run: the oldest playlist
// becomes due one interval after its last update, but never sooner than
// retryFloor after the previous run.
func (u *AutoUpdater) delay(ctx context.Context, lastRun time.Time) time.Duration {
	now := u.svc.now()
	due := now.Add(u.interval)
	if playlists, err := u.svc.store.ListPlaylists(ctx); err == nil && len(playlists) > 0 {
		oldest := playlists[0].LastUpdated
		for _, p := range playlists[1:] {
			if p.LastUpdated.Before(oldest) {
				oldest = p.LastUpdated
			}
		}
		due = oldest.Add(u.interval)
	}
	if !lastRun.IsZero() {
		if floor := lastRun.Add(retryFloor); due.Before(floor) {
			due = floor
		}
	}
	return max(due.Sub(now), 0)
}
