// Package realm holds the realm directory served to authenticated clients.
package realm

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/udisondev/realmd/internal/metrics"
	"github.com/udisondev/realmd/internal/model"
)

// Source loads the realm list. It is called repeatedly; errors are not fatal.
type Source interface {
	ListRealms(ctx context.Context) ([]model.Realm, error)
}

// Directory holds the current realm snapshot.
// Refresh installs a new snapshot atomically; readers never see a partial list.
type Directory struct {
	src      Source
	interval time.Duration

	snapshot atomic.Pointer[[]model.Realm]
	trigger  chan struct{}
}

// NewDirectory creates an empty directory over src.
func NewDirectory(src Source, interval time.Duration) *Directory {
	d := &Directory{
		src:      src,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
	empty := []model.Realm{}
	d.snapshot.Store(&empty)
	return d
}

// Snapshot returns the current realm list. Callers must not mutate it.
func (d *Directory) Snapshot() []model.Realm {
	return *d.snapshot.Load()
}

// Refresh reloads the list from the source. On error the previous
// snapshot stays in place.
func (d *Directory) Refresh(ctx context.Context) error {
	realms, err := d.src.ListRealms(ctx)
	if err != nil {
		metrics.RealmRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("listing realms: %w", err)
	}

	// копия: source может переиспользовать свой слайс
	snapshot := make([]model.Realm, len(realms))
	copy(snapshot, realms)
	d.snapshot.Store(&snapshot)

	metrics.RealmRefreshes.WithLabelValues("ok").Inc()
	metrics.RealmsAvailable.Set(float64(len(snapshot)))
	return nil
}

// Load performs the initial refresh, retrying with exponential backoff
// for up to maxElapsed.
func (d *Directory) Load(ctx context.Context, maxElapsed time.Duration) error {
	return retryUntil(ctx, func() error {
		return d.Refresh(ctx)
	}, maxElapsed)
}

// Trigger requests an out-of-schedule refresh. Never blocks.
func (d *Directory) Trigger() {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes the directory every interval and on Trigger until ctx is done.
func (d *Directory) Run(ctx context.Context) error {
	if d.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-d.trigger:
		}

		if err := d.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("realm refresh failed, serving last known list", "err", err, "realms", len(d.Snapshot()))
		}
	}
}

func retryUntil(ctx context.Context, op func() error, maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	return backoff.RetryNotify(op, backoff.WithContext(bo, ctx), func(err error, d time.Duration) {
		slog.Warn("realm load failed, retrying", "err", err, "backoff", d)
	})
}
