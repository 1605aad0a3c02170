package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/nba-stream-service/internal/app/games"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
	"github.com/preston-bernstein/nba-stream-service/internal/store"
	"github.com/preston-bernstein/nba-stream-service/internal/stream"
)

// scriptedPBP walks a game to game_over after two live frames.
type scriptedPBP struct{}

func (scriptedPBP) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	return &pbp.Raw{
		ID:     gameID,
		Status: "inprogress",
		Home:   pbp.RawTeam{Name: "Home", Points: 42},
		Away:   pbp.RawTeam{Name: "Away", Points: 40},
		Periods: []pbp.Period{{Number: 2, Events: []pbp.Event{{
			Clock:       "04:20",
			Description: "makes jump shot",
			EventType:   "twopointmade",
		}}}},
	}, nil
}

type finishingPBP struct{}

func (finishingPBP) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	return &pbp.Raw{ID: gameID, Status: "closed"}, nil
}

func dialStream(t *testing.T, serverURL, gameID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/games/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func newStreamServer(t *testing.T, b *stream.Broadcaster) *httptest.Server {
	t.Helper()
	svc := games.NewService(store.NewMemoryStore(), nil)
	h := NewHandler(svc, b, nil, nil, nil)

	r := chi.NewRouter()
	r.Get("/ws/games/{gameID}", h.StreamGame)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestStreamGameDeliversUpdates(t *testing.T) {
	b := stream.New(scriptedPBP{}, stream.Config{ActiveInterval: 20 * time.Millisecond}, nil, nil, nil)
	t.Cleanup(func() { _ = b.Shutdown(context.Background()) })
	server := newStreamServer(t, b)

	conn := dialStream(t, server.URL, "g1")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update pbp.Update
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read: %v", err)
	}
	if update.Type != pbp.TypePlay || update.GameID != "g1" {
		t.Fatalf("unexpected update: %+v", update)
	}
	if update.HomeScore != 42 || update.AwayScore != 40 || update.Quarter != 2 {
		t.Fatalf("unexpected update: %+v", update)
	}
	if update.LastPlay == nil || update.LastPlay.Description != "makes jump shot" {
		t.Fatalf("unexpected last play: %+v", update.LastPlay)
	}
}

func TestStreamGameSendsGameOverThenCloses(t *testing.T) {
	b := stream.New(finishingPBP{}, stream.Config{}, nil, nil, nil)
	t.Cleanup(func() { _ = b.Shutdown(context.Background()) })
	server := newStreamServer(t, b)

	conn := dialStream(t, server.URL, "g1")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update pbp.Update
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read: %v", err)
	}
	if update.Type != pbp.TypeGameOver {
		t.Fatalf("got %+v, want game_over", update)
	}

	// The server then closes the socket normally.
	if err := conn.ReadJSON(&update); err == nil {
		t.Fatal("expected close after game_over")
	} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal closure, got %v", err)
	}
}

func TestStreamGameDisconnectRemovesSubscriber(t *testing.T) {
	b := stream.New(scriptedPBP{}, stream.Config{ActiveInterval: 20 * time.Millisecond}, nil, nil, nil)
	t.Cleanup(func() { _ = b.Shutdown(context.Background()) })
	server := newStreamServer(t, b)

	conn := dialStream(t, server.URL, "g1")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update pbp.Update
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ActiveStreams() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("stream still active after client disconnect")
}

func TestStreamGameRejectsInvalidID(t *testing.T) {
	b := stream.New(scriptedPBP{}, stream.Config{}, nil, nil, nil)
	t.Cleanup(func() { _ = b.Shutdown(context.Background()) })
	server := newStreamServer(t, b)

	resp, err := http.Get(server.URL + "/ws/games/%20")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d", resp.StatusCode)
	}
}
