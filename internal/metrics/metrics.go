package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type streamStats struct {
	cycles        map[string]int
	broadcast     int
	dropped       int
	activeStreams int
	subscribers   int
}

// Recorder captures lightweight, in-memory metrics about provider calls and
// stream activity. It is nil-safe so components can run without telemetry.
type Recorder struct {
	mu      sync.Mutex
	stats   map[string]*providerStats
	streams streamStats
	otel    *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:   make(map[string]*providerStats),
		streams: streamStats{cycles: make(map[string]int)},
		otel:    otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	r.mu.Lock()
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	r.mu.Lock()
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// RecordStreamCycle tracks one poll-classify-broadcast cycle of a game stream.
func (r *Recorder) RecordStreamCycle(classification string, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.streams.cycles[classification]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordStreamCycle(classification, duration)
	}
}

// RecordBroadcast tracks updates delivered to subscriber sinks and those
// dropped because a sink was full.
func (r *Recorder) RecordBroadcast(delivered, dropped int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.streams.broadcast += delivered
	r.streams.dropped += dropped
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordBroadcast(delivered, dropped)
	}
}

// SetStreamGauges records the current number of live streams and subscribers.
func (r *Recorder) SetStreamGauges(activeStreams, subscribers int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.streams.activeStreams = activeStreams
	r.streams.subscribers = subscribers
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordStreamGauges(activeStreams, subscribers)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks schedule poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// Snapshot is a copy of the current stats for one provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) ProviderSnapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// StreamSnapshot is a copy of the current stream counters.
type StreamSnapshot struct {
	Cycles        map[string]int
	Broadcast     int
	Dropped       int
	ActiveStreams int
	Subscribers   int
}

func (r *Recorder) StreamStats() StreamSnapshot {
	if r == nil {
		return StreamSnapshot{Cycles: map[string]int{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cycles := make(map[string]int, len(r.streams.cycles))
	for k, v := range r.streams.cycles {
		cycles[k] = v
	}
	return StreamSnapshot{
		Cycles:        cycles,
		Broadcast:     r.streams.broadcast,
		Dropped:       r.streams.dropped,
		ActiveStreams: r.streams.activeStreams,
		Subscribers:   r.streams.subscribers,
	}
}

func (r *Recorder) ensureStats(provider string) *providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}
