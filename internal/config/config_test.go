package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != defaultPort {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.Provider != defaultProvider {
		t.Fatalf("unexpected provider: %s", cfg.Provider)
	}
	if cfg.SchedulePollInterval != defaultSchedulePoll {
		t.Fatalf("unexpected schedule poll interval: %v", cfg.SchedulePollInterval)
	}
	if cfg.Stream.ActiveInterval != defaultActiveInterval {
		t.Fatalf("unexpected active interval: %v", cfg.Stream.ActiveInterval)
	}
	if cfg.Stream.SinkBuffer != defaultSinkBuffer {
		t.Fatalf("unexpected sink buffer: %d", cfg.Stream.SinkBuffer)
	}
	if cfg.Sportradar.BaseURL != defaultSportradarBaseURL {
		t.Fatalf("unexpected base url: %s", cfg.Sportradar.BaseURL)
	}
	if cfg.Metrics.Enabled {
		t.Fatal("metrics should default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envPort, "8080")
	t.Setenv(envProvider, "sportradar")
	t.Setenv(envSportradarAPIKey, "secret")
	t.Setenv(envStreamActiveInterval, "5s")
	t.Setenv(envStreamSinkBuffer, "64")
	t.Setenv(envMetricsOn, "true")
	t.Setenv(envSnapshotDir, "/tmp/snaps")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.Provider != "sportradar" {
		t.Fatalf("unexpected provider: %s", cfg.Provider)
	}
	if cfg.Sportradar.APIKey != "secret" {
		t.Fatalf("unexpected api key: %s", cfg.Sportradar.APIKey)
	}
	if cfg.Stream.ActiveInterval != 5*time.Second {
		t.Fatalf("unexpected active interval: %v", cfg.Stream.ActiveInterval)
	}
	if cfg.Stream.SinkBuffer != 64 {
		t.Fatalf("unexpected sink buffer: %d", cfg.Stream.SinkBuffer)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled")
	}
	if cfg.Snapshots.Dir != "/tmp/snaps" {
		t.Fatalf("unexpected snapshot dir: %s", cfg.Snapshots.Dir)
	}
}
