package pbp

// Status classifies an upstream response and drives the stream loop's next
// action and poll delay.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusWaiting  Status = "WAITING"
	StatusFinished Status = "FINISHED"
	StatusNotFound Status = "NOT_FOUND"
	StatusError    Status = "ERROR"
)

// UpdateType is the wire-level type of a normalized update.
type UpdateType string

const (
	TypePlay     UpdateType = "play"
	TypeWaiting  UpdateType = "waiting"
	TypeGameOver UpdateType = "game_over"
	TypeError    UpdateType = "error"
)

// LastPlay describes the most recent event of an active game.
type LastPlay struct {
	Description string `json:"description"`
	Timestamp   string `json:"timestamp,omitempty"`
	EventType   string `json:"event_type,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// Update is the normalized message broadcast to every subscriber of a game
// stream. Built fully before delivery and never mutated afterwards.
type Update struct {
	Type      UpdateType `json:"type"`
	GameID    string     `json:"game_id"`
	Clock     string     `json:"clock,omitempty"`
	Quarter   int        `json:"quarter,omitempty"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
	LastPlay  *LastPlay  `json:"last_play,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Terminal reports whether this update ends the stream.
func (u Update) Terminal() bool {
	return u.Type == TypeGameOver
}
