package config

// StreamConfig controls the per-game polling cadence and subscriber queues.
type StreamConfig struct {
	// ActiveInterval is the delay between polls while a game is in progress.
	ActiveInterval Duration
	// WaitingInterval is the delay while the feed has no new events yet.
	WaitingInterval Duration
	// NotFoundInterval is the delay while waiting for a game to start.
	NotFoundInterval Duration
	// ErrorInterval is the delay after a failed upstream fetch.
	ErrorInterval Duration
	// SinkBuffer is the per-subscriber queue capacity.
	SinkBuffer int
}

func loadStream() StreamConfig {
	return StreamConfig{
		ActiveInterval:   durationEnvOrDefault(envStreamActiveInterval, defaultActiveInterval),
		WaitingInterval:  durationEnvOrDefault(envStreamWaitingInterval, defaultWaitingInterval),
		NotFoundInterval: durationEnvOrDefault(envStreamNotFoundInterval, defaultNotFoundInterval),
		ErrorInterval:    durationEnvOrDefault(envStreamErrorInterval, defaultErrorInterval),
		SinkBuffer:       intEnvOrDefault(envStreamSinkBuffer, defaultSinkBuffer),
	}
}
