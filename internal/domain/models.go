package domain

// GameStatus mirrors the upstream contract for schedule lifecycle states.
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "inprogress"
	StatusHalftime   GameStatus = "halftime"
	StatusClosed     GameStatus = "closed"
	StatusPostponed  GameStatus = "postponed"
	StatusCancelled  GameStatus = "cancelled"
)

// Team represents the normalized team shape on the schedule.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// Game is the canonical schedule entry exposed by the service. Its ID is the
// key viewers use to join a live stream.
type Game struct {
	ID        string     `json:"id"`
	Provider  string     `json:"provider"`
	HomeTeam  Team       `json:"home_team"`
	AwayTeam  Team       `json:"away_team"`
	Scheduled string     `json:"scheduled"`
	Status    GameStatus `json:"status"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
}

// TodayResponse is the payload returned by /games/today.
type TodayResponse struct {
	Date  string `json:"date"`
	Games []Game `json:"games"`
}

// NewTodayResponse builds the /games/today payload for a date.
func NewTodayResponse(date string, games []Game) TodayResponse {
	if games == nil {
		games = []Game{}
	}
	return TodayResponse{Date: date, Games: games}
}
