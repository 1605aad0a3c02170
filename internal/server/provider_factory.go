package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/config"
	"github.com/preston-bernstein/nba-stream-service/internal/metrics"
	"github.com/preston-bernstein/nba-stream-service/internal/providers"
	"github.com/preston-bernstein/nba-stream-service/internal/providers/fixture"
	"github.com/preston-bernstein/nba-stream-service/internal/providers/sportradar"
)

// sportradarMinInterval spaces upstream calls across all game streams. It
// must stay well under the active poll cadence or streams starve each other.
const sportradarMinInterval = 250 * time.Millisecond

// providerFactory assembles the provider with shared wrappers (rate limit + retry).
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) providers.DataProvider {
	base := selectProvider(cfg)
	name := normalizeProviderName(cfg.Provider, base)
	if strings.EqualFold(cfg.Provider, "sportradar") {
		base = providers.NewRateLimitedProvider(base, sportradarMinInterval, f.logger)
	}
	return providers.NewRetryingProvider(base, f.logger, f.metrics, name, 0, 0)
}

func selectProvider(cfg config.Config) providers.DataProvider {
	switch strings.ToLower(cfg.Provider) {
	case "sportradar":
		return sportradar.NewClient(sportradar.Config{
			BaseURL:    cfg.Sportradar.BaseURL,
			APIKey:     cfg.Sportradar.APIKey,
			HTTPClient: &http.Client{Timeout: cfg.Sportradar.Timeout},
		})
	default:
		return fixture.New()
	}
}
