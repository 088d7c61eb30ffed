package alerter

// Config алерты отправляются тем же ботом в служебный чат; ChatID=0 - алерты выключены
type Config struct {
	ChatID          int64 `envconfig:"CHAT_ID"`
	MessageThreadID int64 `envconfig:"MESSAGE_THREAD_ID"`
}

func (c *Config) Enabled() bool {
	return c != nil && c.ChatID != 0
}
