// Package stream owns the live fan-out: one polling loop per watched game,
// broadcasting normalized updates to every subscriber of that game.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/nba-stream-service/internal/classify"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
	"github.com/preston-bernstein/nba-stream-service/internal/logging"
	"github.com/preston-bernstein/nba-stream-service/internal/metrics"
	"github.com/preston-bernstein/nba-stream-service/internal/providers"
)

// ErrShuttingDown is returned by AddSubscriber once Shutdown has begun.
var ErrShuttingDown = errors.New("stream: broadcaster shutting down")

const (
	defaultActiveInterval   = 3 * time.Second
	defaultWaitingInterval  = time.Second
	defaultNotFoundInterval = 30 * time.Second
	defaultErrorInterval    = 10 * time.Second
)

// Config controls poll cadence per classification and subscriber queue size.
type Config struct {
	ActiveInterval   time.Duration
	WaitingInterval  time.Duration
	NotFoundInterval time.Duration
	ErrorInterval    time.Duration
	SinkBuffer       int
}

func (c Config) withDefaults() Config {
	if c.ActiveInterval <= 0 {
		c.ActiveInterval = defaultActiveInterval
	}
	if c.WaitingInterval <= 0 {
		c.WaitingInterval = defaultWaitingInterval
	}
	if c.NotFoundInterval <= 0 {
		c.NotFoundInterval = defaultNotFoundInterval
	}
	if c.ErrorInterval <= 0 {
		c.ErrorInterval = defaultErrorInterval
	}
	if c.SinkBuffer <= 0 {
		c.SinkBuffer = defaultSinkBuffer
	}
	return c
}

// gameChannel is the per-game state: the set of live sinks plus the handle
// to cancel the poll loop. All fields are guarded by the broadcaster mutex.
type gameChannel struct {
	gameID   string
	cancel   context.CancelFunc
	subs     map[string]*Subscriber
	tornDown bool
}

// Broadcaster runs at most one poll loop per game and fans updates out to
// that game's subscribers. Loops start on first subscribe and stop on last
// leave, game end, or shutdown.
type Broadcaster struct {
	provider providers.PlayByPlayProvider
	cfg      Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	clock    clockwork.Clock

	mu     sync.Mutex
	games  map[string]*gameChannel
	closed bool
	wg     sync.WaitGroup
}

// New constructs a broadcaster. A nil clock defaults to the real clock.
func New(provider providers.PlayByPlayProvider, cfg Config, logger *slog.Logger, recorder *metrics.Recorder, clock clockwork.Clock) *Broadcaster {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Broadcaster{
		provider: provider,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		recorder: recorder,
		clock:    clock,
		games:    make(map[string]*gameChannel),
	}
}

// EnsureStream starts the game's poll loop if it is not already running.
// Idempotent; a loop with no subscribers yet keeps running until the first
// subscriber leaves again or the game ends.
func (b *Broadcaster) EnsureStream(gameID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrShuttingDown
	}
	b.ensureChannelLocked(gameID)
	return nil
}

// AddSubscriber attaches a new sink to the game's stream, starting the poll
// loop if this is the first subscriber.
func (b *Broadcaster) AddSubscriber(gameID string) (*Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrShuttingDown
	}

	ch := b.ensureChannelLocked(gameID)
	sub := newSubscriber(b.cfg.SinkBuffer)
	ch.subs[sub.id] = sub
	b.updateGaugesLocked()

	logging.Debug(b.logger, "subscriber joined",
		slog.String(logging.FieldGameID, gameID),
		slog.Int(logging.FieldSubscribers, len(ch.subs)))
	return sub, nil
}

// RemoveSubscriber detaches a sink. When the last subscriber leaves, the
// game's poll loop is cancelled and the stream entry removed. The sink
// channel is not closed here; the caller stops reading and the loop may
// still deliver to a broadcast snapshot it already took.
func (b *Broadcaster) RemoveSubscriber(gameID string, sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	ch, ok := b.games[gameID]
	if !ok {
		b.mu.Unlock()
		return
	}
	if _, present := ch.subs[sub.id]; !present {
		b.mu.Unlock()
		return
	}
	delete(ch.subs, sub.id)
	remaining := len(ch.subs)
	if remaining == 0 {
		delete(b.games, gameID)
		ch.tornDown = true
		ch.cancel()
	}
	b.updateGaugesLocked()
	b.mu.Unlock()

	logging.Debug(b.logger, "subscriber left",
		slog.String(logging.FieldGameID, gameID),
		slog.Int(logging.FieldSubscribers, remaining))
}

// ActiveStreams returns the number of games currently being polled.
func (b *Broadcaster) ActiveStreams() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.games)
}

// StreamInfo describes one live stream for diagnostics.
type StreamInfo struct {
	GameID      string `json:"game_id"`
	Subscribers int    `json:"subscribers"`
}

// Snapshot lists the live streams and their subscriber counts.
func (b *Broadcaster) Snapshot() []StreamInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	infos := make([]StreamInfo, 0, len(b.games))
	for id, ch := range b.games {
		infos = append(infos, StreamInfo{GameID: id, Subscribers: len(ch.subs)})
	}
	return infos
}

// Shutdown cancels every poll loop and waits for them to exit or the context
// to expire. Subscribers see their sinks close without a game_over update.
func (b *Broadcaster) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	for _, ch := range b.games {
		ch.cancel()
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ensureChannelLocked returns the game's channel, creating it and starting
// its poll loop when absent. Caller holds b.mu.
func (b *Broadcaster) ensureChannelLocked(gameID string) *gameChannel {
	if ch, ok := b.games[gameID]; ok {
		return ch
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := &gameChannel{
		gameID: gameID,
		cancel: cancel,
		subs:   make(map[string]*Subscriber),
	}
	b.games[gameID] = ch

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error(b.logger, "stream loop panicked", nil,
					slog.String(logging.FieldGameID, gameID),
					slog.Any("panic", r))
			}
			b.finalize(ch)
		}()
		b.run(ctx, ch)
	}()

	logging.Info(b.logger, "stream started", slog.String(logging.FieldGameID, gameID))
	return ch
}

// run is the per-game loop: fetch, classify, broadcast, wait. It exits on
// context cancellation or when the game finishes.
func (b *Broadcaster) run(ctx context.Context, ch *gameChannel) {
	for {
		start := b.clock.Now()
		raw, err := b.provider.FetchPlayByPlay(ctx, ch.gameID)
		if ctx.Err() != nil {
			return
		}

		status, update := b.classifyFetch(ch.gameID, raw, err)
		b.recorder.RecordStreamCycle(string(status), b.clock.Since(start))

		switch status {
		case pbp.StatusFinished:
			b.teardown(ch, update)
			logging.Info(b.logger, "stream finished", slog.String(logging.FieldGameID, ch.gameID))
			return
		case pbp.StatusError:
			// Errors are not broadcast; the next successful poll catches
			// viewers up.
		default:
			b.broadcast(ch, update)
		}

		select {
		case <-ctx.Done():
			return
		case <-b.clock.After(b.delayFor(status)):
		}
	}
}

// classifyFetch folds fetch errors into the classification space.
func (b *Broadcaster) classifyFetch(gameID string, raw *pbp.Raw, err error) (pbp.Status, pbp.Update) {
	if err == nil {
		return classify.Classify(gameID, raw)
	}

	if errors.Is(err, providers.ErrNotFound) {
		return pbp.StatusNotFound, classify.WaitingForStart(gameID)
	}

	if rlErr, ok := providers.AsRateLimitError(err); ok {
		logging.Warn(b.logger, "stream poll rate limited",
			slog.String(logging.FieldGameID, gameID),
			slog.Duration("retry_after", rlErr.RetryAfter))
	} else {
		logging.Warn(b.logger, "stream poll failed",
			slog.String(logging.FieldGameID, gameID),
			slog.Any("err", err))
	}
	return classify.Classify(gameID, nil)
}

func (b *Broadcaster) delayFor(status pbp.Status) time.Duration {
	switch status {
	case pbp.StatusActive:
		return b.cfg.ActiveInterval
	case pbp.StatusNotFound:
		return b.cfg.NotFoundInterval
	case pbp.StatusError:
		return b.cfg.ErrorInterval
	default:
		return b.cfg.WaitingInterval
	}
}

// broadcast delivers one update to a snapshot of the game's sinks. The
// snapshot is taken under the mutex; delivery happens outside it.
func (b *Broadcaster) broadcast(ch *gameChannel, update pbp.Update) {
	b.mu.Lock()
	sinks := make([]*Subscriber, 0, len(ch.subs))
	for _, sub := range ch.subs {
		sinks = append(sinks, sub)
	}
	b.mu.Unlock()

	delivered, dropped := 0, 0
	for _, sub := range sinks {
		if sub.push(update) {
			dropped++
		}
		delivered++
	}
	b.recorder.RecordBroadcast(delivered, dropped)
}

// teardown ends a finished stream: the map entry is removed and the sinks
// collected in one critical section, so a concurrent join either lands
// before teardown and sees game_over, or after and gets a fresh stream.
func (b *Broadcaster) teardown(ch *gameChannel, final pbp.Update) {
	b.mu.Lock()
	if ch.tornDown {
		b.mu.Unlock()
		return
	}
	ch.tornDown = true
	ch.cancel()
	if current, ok := b.games[ch.gameID]; ok && current == ch {
		delete(b.games, ch.gameID)
	}
	sinks := make([]*Subscriber, 0, len(ch.subs))
	for _, sub := range ch.subs {
		sinks = append(sinks, sub)
	}
	ch.subs = make(map[string]*Subscriber)
	b.updateGaugesLocked()
	b.mu.Unlock()

	for _, sub := range sinks {
		sub.push(final)
		sub.closeSink()
	}
	b.recorder.RecordBroadcast(len(sinks), 0)
}

// finalize cleans up when a loop exits without a terminal update: last
// leave, shutdown, or a recovered panic. Sinks close without game_over.
func (b *Broadcaster) finalize(ch *gameChannel) {
	b.mu.Lock()
	if ch.tornDown {
		b.mu.Unlock()
		return
	}
	ch.tornDown = true
	ch.cancel()
	if current, ok := b.games[ch.gameID]; ok && current == ch {
		delete(b.games, ch.gameID)
	}
	sinks := make([]*Subscriber, 0, len(ch.subs))
	for _, sub := range ch.subs {
		sinks = append(sinks, sub)
	}
	ch.subs = make(map[string]*Subscriber)
	b.updateGaugesLocked()
	b.mu.Unlock()

	for _, sub := range sinks {
		sub.closeSink()
	}
}

func (b *Broadcaster) updateGaugesLocked() {
	total := 0
	for _, ch := range b.games {
		total += len(ch.subs)
	}
	b.recorder.SetStreamGauges(len(b.games), total)
}
