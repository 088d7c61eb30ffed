package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config Redis для состояния пагинации и кэша справки по веществам
type Config struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"6379"`
	Username        string        `envconfig:"USERNAME"`
	Password        string        `envconfig:"PASSWORD"`
	Database        int           `envconfig:"DATABASE" default:"0"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" default:"3"`
	DialTimeout     time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
	PoolSize        int           `envconfig:"POOL_SIZE" default:"10"`
	MinIdleConns    int           `envconfig:"MIN_IDLE_CONNS" default:"2"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
}

func (c *Config) Options() *redis.Options {
	return &redis.Options{
		Addr:            net.JoinHostPort(c.Host, c.Port),
		Username:        c.Username,
		Password:        c.Password,
		DB:              c.Database,
		MaxRetries:      c.MaxRetries,
		DialTimeout:     c.DialTimeout,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		PoolSize:        c.PoolSize,
		MinIdleConns:    c.MinIdleConns,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}
}

// NewConnection клиент с проверкой PING; нулевые таймауты go-redis заменяет своими значениями
func (c *Config) NewConnection(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(c.Options())

	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
