package telegram

// Config бот работает либо через вебхук (USE_WEBHOOK=true), либо long polling для локальной разработки
type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	UseWebhook     bool   `envconfig:"USE_WEBHOOK" default:"false"`
	WebhookURL     string `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"`
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT" default:"30"` // секунды long poll
}

func (c *Config) IsWebhookEnabled() bool {
	return c.UseWebhook
}
