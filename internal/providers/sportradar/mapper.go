package sportradar

import (
	"strings"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
)

func mapGame(g gameResponse) domain.Game {
	return domain.Game{
		ID:        g.ID,
		Provider:  providerName,
		HomeTeam:  mapTeam(g.Home),
		AwayTeam:  mapTeam(g.Away),
		Scheduled: g.Scheduled,
		Status:    mapStatus(g.Status),
		HomeScore: g.HomePoints,
		AwayScore: g.AwayPoints,
	}
}

func mapTeam(t teamResponse) domain.Team {
	return domain.Team{
		ID:    t.ID,
		Name:  t.Name,
		Alias: t.Alias,
	}
}

func mapStatus(status string) domain.GameStatus {
	switch strings.ToLower(status) {
	case "closed", "complete":
		return domain.StatusClosed
	case "inprogress", "in progress":
		return domain.StatusInProgress
	case "halftime":
		return domain.StatusHalftime
	case "postponed":
		return domain.StatusPostponed
	case "cancelled", "canceled":
		return domain.StatusCancelled
	default:
		return domain.StatusScheduled
	}
}
