package app

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	server "github.com/admin/tg-bots/dose-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/psychonautwiki"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/mongo"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/redis"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/pkg/logger"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	PaginationMemory = "memory"
	PaginationRedis  = "redis"
)

type Config struct {
	Log            *logger.Config         `envconfig:"LOG"`
	Server         *server.Config         `envconfig:"APISERVER"`
	Telegram       *telegram.Config       `envconfig:"TELEGRAM"`
	Store          StoreConfig            `envconfig:"STORE"`
	Pagination     PaginationConfig       `envconfig:"PAGINATION"`
	Bot            BotConfig              `envconfig:"BOT"`
	Postgres       *pg.Config             `envconfig:"POSTGRES"`
	Mongo          *mongo.Config          `envconfig:"MONGO"`
	Redis          *redis.Config          `envconfig:"REDIS"`
	S3             *s3.Config             `envconfig:"S3"`
	Kafka          *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Alerter        *alerterAdapter.Config `envconfig:"ALERTER"`
	PsychonautWiki *psychonautwiki.Config `envconfig:"PSYCHONAUTWIKI"`
}

// StoreConfig где живут логи доз
type StoreConfig struct {
	Driver  string        `envconfig:"DRIVER" default:"memory"` // memory, postgres, mongo
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

// PaginationConfig где живут состояния листалок
type PaginationConfig struct {
	Driver        string        `envconfig:"DRIVER" default:"memory"` // memory, redis
	TTL           time.Duration `envconfig:"TTL" default:"10m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
}

// BotConfig поведение команд
type BotConfig struct {
	PageSize       int           `envconfig:"PAGE_SIZE" default:"5"`
	TimestampStyle string        `envconfig:"TIMESTAMP_STYLE" default:"absolute"` // absolute, relative
	Timezone       string        `envconfig:"TIMEZONE" default:"UTC"`
	InviteURL      string        `envconfig:"INVITE_URL"`
	SupportURL     string        `envconfig:"SUPPORT_URL"`
	LookupTimeout  time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"10s"`
	ExportTimeout  time.Duration `envconfig:"EXPORT_TIMEOUT" default:"30s"`
	LookupCacheTTL time.Duration `envconfig:"LOOKUP_CACHE_TTL" default:"24h"`
	AlertCooldown  time.Duration `envconfig:"ALERT_COOLDOWN" default:"1m"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate ошибки конфигурации фатальны на старте
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}

	switch c.Store.Driver {
	case StoreMemory, StorePostgres, StoreMongo:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Pagination.Driver {
	case PaginationMemory, PaginationRedis:
	default:
		return fmt.Errorf("unknown pagination driver %q", c.Pagination.Driver)
	}

	if c.Bot.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Bot.PageSize)
	}
	if !domain.TimestampStyle(c.Bot.TimestampStyle).IsValid() {
		return fmt.Errorf("unknown timestamp style %q", c.Bot.TimestampStyle)
	}
	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Bot.Timezone, err)
	}

	if c.Telegram != nil && c.Telegram.IsWebhookEnabled() && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required when use_webhook is true")
	}
	if c.Kafka != nil && c.Kafka.Enabled && (c.Telegram == nil || !c.Telegram.IsWebhookEnabled()) {
		return fmt.Errorf("kafka fan-out requires webhook mode")
	}

	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Bot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
