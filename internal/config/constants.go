package config

import "time"

const (
	envPort         = "PORT"
	envProvider     = "PROVIDER"
	envSchedulePoll = "SCHEDULE_POLL_INTERVAL"

	envSportradarAPIKey  = "SPORTRADAR_API_KEY"
	envSportradarBaseURL = "SPORTRADAR_BASE_URL"
	envSportradarTimeout = "SPORTRADAR_TIMEOUT"

	envStreamActiveInterval   = "STREAM_ACTIVE_INTERVAL"
	envStreamWaitingInterval  = "STREAM_WAITING_INTERVAL"
	envStreamNotFoundInterval = "STREAM_NOT_FOUND_INTERVAL"
	envStreamErrorInterval    = "STREAM_ERROR_INTERVAL"
	envStreamSinkBuffer       = "STREAM_SINK_BUFFER"

	envSnapshotDir       = "SNAPSHOT_DIR"
	envSnapshotRetention = "SNAPSHOT_RETENTION_DAYS"

	envMetricsOn    = "METRICS_ENABLED"
	envMetricsPort  = "METRICS_PORT"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort     = "4000"
	defaultProvider = "fixture"
	// Conservative default schedule refresh to respect upstream trial quotas.
	defaultSchedulePoll = 30 * Duration(time.Second)

	defaultSportradarBaseURL = "https://api.sportradar.com/nba/trial/v8/en"
	defaultSportradarTimeout = 10 * Duration(time.Second)

	// Poll cadence per classification; mirrors how often the upstream feed moves.
	defaultActiveInterval   = 3 * Duration(time.Second)
	defaultWaitingInterval  = 1 * Duration(time.Second)
	defaultNotFoundInterval = 30 * Duration(time.Second)
	defaultErrorInterval    = 10 * Duration(time.Second)
	defaultSinkBuffer       = 16

	defaultSnapshotDir       = "data/snapshots"
	defaultSnapshotRetention = 14

	defaultMetricsPort = "9090"
)
