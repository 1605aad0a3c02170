package config

// SportradarConfig controls how the sportradar provider reaches the upstream API.
type SportradarConfig struct {
	APIKey  string
	BaseURL string
	Timeout Duration
}

func loadSportradar() SportradarConfig {
	return SportradarConfig{
		APIKey:  envOrDefault(envSportradarAPIKey, ""),
		BaseURL: envOrDefault(envSportradarBaseURL, defaultSportradarBaseURL),
		Timeout: durationEnvOrDefault(envSportradarTimeout, defaultSportradarTimeout),
	}
}
