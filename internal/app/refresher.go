package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/five82/stash/internal/nas"
	"github.com/five82/stash/internal/state"
	"github.com/five82/stash/internal/tracing"
)

const (
	defaultRefreshInterval = 30 * time.Second
	maxBackoff             = 5 * time.Minute
)

// refreshTarget is the part of state.Store the refresher drives.
type refreshTarget interface {
	Snapshot() state.Snapshot
	FetchUser(ctx context.Context) error
	Persist(ctx context.Context) error
}

// StartRefresher launches a background goroutine that reloads the user's
// settings and writes the session snapshot at a fixed cadence, backing off
// while the server is unreachable. It returns immediately. onExpired, if set,
// is called once when the server rejects the token.
func StartRefresher(ctx context.Context, store refreshTarget, interval time.Duration, logger *zap.Logger, onExpired func()) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		failures := 0
		for {
			delay := calculateBackoff(failures, interval)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			err := refresh(ctx, store)
			switch {
			case err == nil:
				failures = 0
			case errors.Is(err, nas.ErrUnauthorized):
				logger.Warn("session rejected by server", zap.Error(err))
				failures = 0
				if onExpired != nil {
					onExpired()
					onExpired = nil
				}
			case errors.Is(err, context.Canceled):
				return
			default:
				failures++
				logger.Warn("background refresh failed",
					zap.Error(err),
					zap.Int("failures", failures),
					zap.Duration("next_in", calculateBackoff(failures, interval)),
				)
			}
		}
	}()
}

// refresh reloads the user and persists the snapshot. Signed-out sessions
// are skipped.
func refresh(ctx context.Context, store refreshTarget) error {
	if !store.Snapshot().Authenticated() {
		return nil
	}
	ctx, span := tracing.Tracer().Start(ctx, "stash.refresh")
	defer span.End()

	if err := store.FetchUser(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	if err := store.Persist(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// calculateBackoff doubles the interval per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
