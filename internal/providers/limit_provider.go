package providers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
)

// rateLimitedProvider wraps a DataProvider and enforces a minimum interval
// between upstream calls across all games, to stay under trial-key quotas.
type rateLimitedProvider struct {
	next     DataProvider
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	nextAllowed time.Time
}

// NewRateLimitedProvider returns a DataProvider that spaces calls at least
// interval apart. Calls wait for their slot; the wait is context-aware.
func NewRateLimitedProvider(next DataProvider, interval time.Duration, logger *slog.Logger) DataProvider {
	if interval <= 0 {
		interval = time.Second
	}
	return &rateLimitedProvider{
		next:     next,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func (p *rateLimitedProvider) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	if p == nil || p.next == nil {
		return nil, ErrProviderUnavailable
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchPlayByPlay(ctx, gameID)
}

func (p *rateLimitedProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	if p == nil || p.next == nil {
		return nil, ErrProviderUnavailable
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchGames(ctx, date)
}

// wait reserves the next call slot and blocks until it arrives.
func (p *rateLimitedProvider) wait(ctx context.Context) error {
	p.mu.Lock()
	now := p.now()
	slot := p.nextAllowed
	if slot.Before(now) {
		slot = now
	}
	p.nextAllowed = slot.Add(p.interval)
	p.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return nil
	}
	if p.logger != nil {
		p.logger.Debug("rate limit wait", slog.Duration("delay", delay))
	}
	return p.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
