package sportradar

type scheduleResponse struct {
	Date  string         `json:"date"`
	Games []gameResponse `json:"games"`
}

type gameResponse struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	Scheduled  string       `json:"scheduled"`
	Home       teamResponse `json:"home"`
	Away       teamResponse `json:"away"`
	HomePoints int          `json:"home_points"`
	AwayPoints int          `json:"away_points"`
}

type teamResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}
