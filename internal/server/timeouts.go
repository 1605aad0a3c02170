package server

import "time"

const (
	readTimeout = 10 * time.Second
	// Write timeout stays zero: websocket streams outlive any fixed deadline.
	idleTimeout = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
