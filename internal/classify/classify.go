// Package classify maps raw upstream play-by-play payloads onto the canonical
// stream statuses. It is total: any input, including nil or malformed payloads,
// yields a status and an update, never a panic.
package classify

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
)

const (
	placeholderDescription = "No description available"

	msgGameOver       = "Game has ended"
	msgWaitingToStart = "Waiting for game to start..."
	msgNoPeriods      = "No periods data available"
	msgNoEvents       = "No events in current period"
	msgFetchFailed    = "Failed to fetch play-by-play data"
)

// Classify normalizes a raw upstream payload into a status and the update to
// broadcast for it. ERROR updates are never broadcast; they exist so callers
// have a uniform shape to log.
func Classify(gameID string, raw *pbp.Raw) (pbp.Status, pbp.Update) {
	if raw == nil {
		return pbp.StatusError, errorUpdate(gameID, msgFetchFailed)
	}

	switch strings.ToLower(raw.Sentinel()) {
	case "finished", "game_over", "closed", "complete":
		return pbp.StatusFinished, GameOver(gameID)
	case "error":
		return pbp.StatusError, errorUpdate(gameID, message(raw, msgFetchFailed))
	case "not_found":
		return pbp.StatusNotFound, WaitingForStart(gameID)
	case "waiting":
		return pbp.StatusWaiting, waitingUpdate(gameID, message(raw, msgNoEvents))
	}

	if len(raw.Periods) == 0 {
		return pbp.StatusWaiting, waitingUpdate(gameID, msgNoPeriods)
	}

	period, event, ok := raw.LatestEvent()
	if !ok {
		return pbp.StatusWaiting, waitingUpdate(gameID, msgNoEvents)
	}

	return pbp.StatusActive, playUpdate(gameID, raw, period, event)
}

// GameOver builds the terminal update for a stream.
func GameOver(gameID string) pbp.Update {
	return pbp.Update{
		Type:    pbp.TypeGameOver,
		GameID:  gameID,
		Message: msgGameOver,
	}
}

// WaitingForStart builds the informational update for a game the upstream does
// not know about yet.
func WaitingForStart(gameID string) pbp.Update {
	return waitingUpdate(gameID, msgWaitingToStart)
}

func playUpdate(gameID string, raw *pbp.Raw, period pbp.Period, event pbp.Event) pbp.Update {
	clock := event.Clock
	if clock == "" {
		clock = "00:00"
	}

	return pbp.Update{
		Type:      pbp.TypePlay,
		GameID:    gameID,
		Clock:     clock,
		Quarter:   period.Number,
		HomeScore: raw.Home.Points,
		AwayScore: raw.Away.Points,
		LastPlay: &pbp.LastPlay{
			Description: describe(event),
			Timestamp:   event.Updated,
			EventType:   event.EventType,
			Attribution: event.Attribution.Name,
		},
	}
}

// describe enriches the raw event description with shot details and the
// attributed player when the feed carries them.
func describe(event pbp.Event) string {
	description := event.Description
	if description == "" {
		description = placeholderDescription
	}

	if event.EventType == "shot" && event.ShotType != "" && event.ShotDistance > 0 {
		description = fmt.Sprintf("%s (%s from %dft)", description, event.ShotType, event.ShotDistance)
	}

	for _, stat := range event.Statistics {
		if stat.Player.FullName != "" {
			description = stat.Player.FullName + ": " + description
			break
		}
	}

	return description
}

func waitingUpdate(gameID, msg string) pbp.Update {
	return pbp.Update{
		Type:    pbp.TypeWaiting,
		GameID:  gameID,
		Message: msg,
	}
}

func errorUpdate(gameID, msg string) pbp.Update {
	return pbp.Update{
		Type:    pbp.TypeError,
		GameID:  gameID,
		Message: msg,
	}
}

func message(raw *pbp.Raw, fallback string) string {
	if raw != nil && raw.Message != "" {
		return raw.Message
	}
	return fallback
}
