package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/teststubs"
)

func TestPollerFetchesStoresAndWritesSnapshot(t *testing.T) {
	g := domain.Game{
		ID:        "poll-game",
		Provider:  "stub",
		HomeTeam:  domain.Team{ID: "home", Name: "Home"},
		AwayTeam:  domain.Team{ID: "away", Name: "Away"},
		Scheduled: time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Status:    domain.StatusScheduled,
	}

	provider := &teststubs.StubProvider{
		Games:  []domain.Game{g},
		Notify: make(chan struct{}),
	}
	sink := &teststubs.StubGameSink{}
	writer := &teststubs.StubSnapshotWriter{}

	p := New(provider, sink, writer, nil, nil, 10*time.Millisecond)
	// Fix the time for deterministic date.
	p.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)

	select {
	case <-provider.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial fetch")
	}

	time.Sleep(30 * time.Millisecond) // allow at least one ticker fire

	cancel()
	_ = p.Stop(context.Background())

	date, games := sink.Latest()
	if date != "2026-01-15" {
		t.Fatalf("expected store refreshed for 2026-01-15, got %q", date)
	}
	if len(games) != 1 || games[0].ID != "poll-game" {
		t.Fatalf("unexpected games in store: %+v", games)
	}

	snap, ok := writer.Snapshot("2026-01-15")
	if !ok {
		t.Fatalf("expected snapshot written for 2026-01-15")
	}
	if len(snap.Games) != 1 || snap.Games[0].ID != "poll-game" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if provider.Calls.Load() < 1 {
		t.Fatalf("expected at least one fetch call")
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	provider := &teststubs.StubProvider{
		Notify: make(chan struct{}),
	}

	p := New(provider, nil, &teststubs.StubSnapshotWriter{}, nil, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)

	select {
	case <-provider.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial fetch")
	}

	cancel()
	_ = p.Stop(context.Background())

	callsAfterStop := provider.Calls.Load()
	time.Sleep(20 * time.Millisecond)
	if provider.Calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional fetches after stop; before=%d after=%d", callsAfterStop, provider.Calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubProvider{}, nil, &teststubs.StubSnapshotWriter{}, nil, nil, time.Hour)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubProvider{}, nil, &teststubs.StubSnapshotWriter{}, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx) // should no-op

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New(&teststubs.StubProvider{}, nil, &teststubs.StubSnapshotWriter{}, nil, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}

func TestPollerStatusTracksFailuresAndSuccess(t *testing.T) {
	provider := &teststubs.StubProvider{
		Err: errors.New("boom"),
	}

	p := New(provider, nil, &teststubs.StubSnapshotWriter{}, nil, nil, time.Millisecond)
	ctx := context.Background()

	p.fetchOnce(ctx)
	status := p.Status()
	if status.ConsecutiveFailures != 1 {
		t.Fatalf("expected 1 failure, got %d", status.ConsecutiveFailures)
	}
	if status.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	if !status.LastSuccess.IsZero() {
		t.Fatalf("expected no success recorded yet")
	}
	if status.IsReady() {
		t.Fatalf("expected not ready after failure")
	}

	provider.Err = nil
	p.fetchOnce(ctx)
	status = p.Status()
	if status.ConsecutiveFailures != 0 {
		t.Fatalf("expected failures reset, got %d", status.ConsecutiveFailures)
	}
	if status.LastSuccess.IsZero() {
		t.Fatalf("expected success timestamp")
	}
	if !status.IsReady() {
		t.Fatalf("expected ready after success")
	}
}

func TestPollerLogsOnErrorAndSuccess(t *testing.T) {
	provider := &teststubs.StubProvider{
		Err: errors.New("fail"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	p := New(provider, nil, &teststubs.StubSnapshotWriter{}, logger, nil, time.Second)
	p.fetchOnce(context.Background()) // should log error

	provider.Err = nil
	provider.Games = []domain.Game{{ID: "ok"}}
	p.fetchOnce(context.Background()) // should log info
}

func TestPollerNilSinkAndWriterDoNotPanic(t *testing.T) {
	provider := &teststubs.StubProvider{Games: []domain.Game{{ID: "g1"}}}
	p := New(provider, nil, nil, nil, nil, time.Minute)
	p.fetchOnce(context.Background()) // should not panic
}

func TestPollerWriteErrorLogsButContinues(t *testing.T) {
	provider := &teststubs.StubProvider{Games: []domain.Game{{ID: "g1"}}}
	writer := &teststubs.StubSnapshotWriter{Err: errors.New("write failed")}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	p := New(provider, nil, writer, logger, nil, time.Minute)
	p.fetchOnce(context.Background())

	// Should still record success even if write fails.
	if p.Status().ConsecutiveFailures != 0 {
		t.Fatalf("expected success despite write error")
	}
}
