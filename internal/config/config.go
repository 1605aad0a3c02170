package config

import "github.com/joho/godotenv"

// Config holds runtime configuration for the server.
type Config struct {
	Port                 string
	Provider             string
	SchedulePollInterval Duration
	Sportradar           SportradarConfig
	Stream               StreamConfig
	Snapshots            SnapshotsConfig
	Metrics              MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables win over file entries.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                 envOrDefault(envPort, defaultPort),
		Provider:             envOrDefault(envProvider, defaultProvider),
		SchedulePollInterval: durationEnvOrDefault(envSchedulePoll, defaultSchedulePoll),
		Sportradar:           loadSportradar(),
		Stream:               loadStream(),
		Snapshots:            loadSnapshots(),
		Metrics:              loadMetrics(),
	}
}
