package psychonautwiki

import "time"

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" default:"https://api.psychonautwiki.org/"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
	SkipSSL string        `envconfig:"SKIP_SSL"` // "true"/"1", как USE_WEBHOOK
}

func (c *Config) ShouldSkipSSL() bool {
	return c.SkipSSL == "true" || c.SkipSSL == "1" || c.SkipSSL == "True"
}
