package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/config"
	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/poller"
	"github.com/preston-bernstein/nba-stream-service/internal/teststubs"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{Port: "0", Provider: "fixture"}
	cfg.Snapshots.Dir = t.TempDir()
	cfg.Snapshots.RetentionDays = 14
	return cfg
}

func TestNewServerServesHealth(t *testing.T) {
	s := New(testConfig(t), nil)
	t.Cleanup(s.gracefulShutdown)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestServerWithInjectedProviderServesGames(t *testing.T) {
	provider := &teststubs.StubProvider{
		Games: []domain.Game{{ID: "g1", Provider: "stub"}},
	}
	s := newServerWithProvider(testConfig(t), nil, provider)
	t.Cleanup(s.gracefulShutdown)

	// Simulate one poller refresh.
	today := time.Now().UTC().Format("2006-01-02")
	s.store.SetGames(today, provider.Games)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/g1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
}

type fakeHTTPServer struct {
	shutdowns atomic.Int32
	started   chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	close(f.started)
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(ctx context.Context) error {
	f.shutdowns.Add(1)
	return nil
}

func (f *fakeHTTPServer) Addr() string          { return ":0" }
func (f *fakeHTTPServer) Handler() http.Handler { return http.NewServeMux() }

type fakePoller struct {
	starts atomic.Int32
	stops  atomic.Int32
}

func (f *fakePoller) Start(ctx context.Context)      { f.starts.Add(1) }
func (f *fakePoller) Stop(ctx context.Context) error { f.stops.Add(1); return nil }
func (f *fakePoller) Status() poller.Status          { return poller.Status{} }

func TestRunShutsDownOnContextCancel(t *testing.T) {
	httpSrv := newFakeHTTPServer()
	plr := &fakePoller{}
	s := newServerWithDeps(config.Config{Port: "0"}, nil, nil, nil, httpSrv, plr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, cancel)
		close(done)
	}()

	select {
	case <-httpSrv.started:
	case <-time.After(time.Second):
		t.Fatal("http server never started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if plr.starts.Load() != 1 || plr.stops.Load() != 1 {
		t.Fatalf("poller starts=%d stops=%d", plr.starts.Load(), plr.stops.Load())
	}
	if httpSrv.shutdowns.Load() != 1 {
		t.Fatalf("http shutdowns=%d", httpSrv.shutdowns.Load())
	}
}
