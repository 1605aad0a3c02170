// Package pbp holds the play-by-play shapes: the raw upstream payload and the
// normalized update broadcast to stream subscribers.
package pbp

// Raw is the play-by-play payload as returned by the upstream feed. Fields are
// optional; classification must tolerate any of them being absent.
type Raw struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
	// Type duplicates Status in some upstream responses; see Sentinel.
	Type    string   `json:"type,omitempty"`
	Message string   `json:"message,omitempty"`
	Home    RawTeam  `json:"home"`
	Away    RawTeam  `json:"away"`
	Periods []Period `json:"periods,omitempty"`
}

// RawTeam carries the team name and running score.
type RawTeam struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Period is one quarter or overtime segment of the feed.
type Period struct {
	Number int     `json:"number"`
	Events []Event `json:"events,omitempty"`
}

// Event is a single play entry.
type Event struct {
	ID           string      `json:"id"`
	Clock        string      `json:"clock"`
	Description  string      `json:"description"`
	EventType    string      `json:"event_type"`
	ShotType     string      `json:"shot_type,omitempty"`
	ShotDistance int         `json:"shot_distance,omitempty"`
	HomePoints   int         `json:"home_points"`
	AwayPoints   int         `json:"away_points"`
	Updated      string      `json:"updated,omitempty"`
	Attribution  Attribution `json:"attribution"`
	Statistics   []Statistic `json:"statistics,omitempty"`
}

// Attribution names the team an event is credited to.
type Attribution struct {
	Name string `json:"name"`
}

// Statistic links an event to the players involved.
type Statistic struct {
	Player Player `json:"player"`
}

// Player identifies a participant in an event.
type Player struct {
	FullName string `json:"full_name"`
}

// Sentinel returns the upstream lifecycle marker for this payload. Upstream
// responses carry it in either "status" or "type" depending on the feed;
// status wins when both are set. Normalized here once so callers never see the
// inconsistency.
func (r *Raw) Sentinel() string {
	if r == nil {
		return ""
	}
	if r.Status != "" {
		return r.Status
	}
	return r.Type
}

// LatestEvent returns the last event of the highest-numbered period, or false
// when the payload has no extractable event.
func (r *Raw) LatestEvent() (Period, Event, bool) {
	if r == nil || len(r.Periods) == 0 {
		return Period{}, Event{}, false
	}

	current := r.Periods[0]
	for _, p := range r.Periods[1:] {
		if p.Number > current.Number {
			current = p
		}
	}
	if len(current.Events) == 0 {
		return current, Event{}, false
	}
	return current, current.Events[len(current.Events)-1], true
}
