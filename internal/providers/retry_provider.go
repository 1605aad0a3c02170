package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
	"github.com/preston-bernstein/nba-stream-service/internal/metrics"
)

const (
	defaultRetryAttempts   = 3
	defaultInitialInterval = 200 * time.Millisecond
)

// retryingProvider wraps a DataProvider with exponential-backoff retries.
// Not-found and rate-limit responses are permanent: the stream loop owns the
// longer-horizon reaction to those.
type retryingProvider struct {
	inner       DataProvider
	logger      *slog.Logger
	recorder    *metrics.Recorder
	name        string
	maxAttempts uint64
	initial     time.Duration
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts or
// initialInterval are <= 0, defaults are used.
func NewRetryingProvider(inner DataProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, maxAttempts int, initialInterval time.Duration) DataProvider {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initialInterval <= 0 {
		initialInterval = defaultInitialInterval
	}
	return &retryingProvider{
		inner:       inner,
		logger:      logger,
		recorder:    recorder,
		name:        name,
		maxAttempts: uint64(maxAttempts - 1),
		initial:     initialInterval,
	}
}

func (r *retryingProvider) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	return retry(ctx, r, func() (*pbp.Raw, error) {
		return r.attemptPlayByPlay(ctx, gameID)
	})
}

func (r *retryingProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	return retry(ctx, r, func() ([]domain.Game, error) {
		return r.attemptGames(ctx, date)
	})
}

func retry[T any](ctx context.Context, r *retryingProvider, operation func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial

	result, err := backoff.RetryWithData(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, r.maxAttempts), ctx),
	)
	if err != nil {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "provider fetch failed", "err", unwrapPermanent(err))
	}
	return result, unwrapPermanent(err)
}

func (r *retryingProvider) attemptPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	start := time.Now()
	raw, err := r.inner.FetchPlayByPlay(ctx, gameID)
	r.record(start, err)
	if err != nil {
		return nil, r.classifyAttempt(ctx, err)
	}
	return raw, nil
}

func (r *retryingProvider) attemptGames(ctx context.Context, date string) ([]domain.Game, error) {
	start := time.Now()
	games, err := r.inner.FetchGames(ctx, date)
	r.record(start, err)
	if err != nil {
		return nil, r.classifyAttempt(ctx, err)
	}
	return games, nil
}

func (r *retryingProvider) record(start time.Time, err error) {
	if r.recorder != nil {
		r.recorder.RecordProviderAttempt(r.name, time.Since(start), err)
	}
}

// classifyAttempt decides whether an attempt error is worth retrying.
func (r *retryingProvider) classifyAttempt(ctx context.Context, err error) error {
	if errors.Is(err, ErrNotFound) {
		return backoff.Permanent(err)
	}
	if rlErr, ok := AsRateLimitError(err); ok {
		if r.recorder != nil {
			r.recorder.RecordRateLimit(r.name, rlErr.RetryAfter)
		}
		return backoff.Permanent(err)
	}
	logWithProvider(ctx, r.logger, slog.LevelWarn, r.name, "provider fetch retry", "err", err)
	return err
}

// unwrapPermanent strips the backoff permanent marker so callers see the
// original typed error.
func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}
