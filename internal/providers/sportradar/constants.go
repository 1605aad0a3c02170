package sportradar

import "time"

const providerName = "sportradar"

const (
	defaultBaseURL     = "https://api.sportradar.com/nba/trial/v8/en"
	defaultHTTPTimeout = 10 * time.Second
)
