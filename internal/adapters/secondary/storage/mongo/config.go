package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultMaxPoolSize    = 50
)

type Config struct {
	URI            string `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database       string `envconfig:"DATABASE" default:"dosebot"`
	ConnectTimeout int    `envconfig:"CONNECT_TIMEOUT" default:"10"` // в секундах
	MaxPoolSize    uint64 `envconfig:"MAX_POOL_SIZE" default:"50"`
}

// NewConnection подключается к MongoDB и проверяет доступность primary
func (c *Config) NewConnection(ctx context.Context) (*mongo.Client, error) {
	timeout := time.Duration(c.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	poolSize := c.MaxPoolSize
	if poolSize == 0 {
		poolSize = defaultMaxPoolSize
	}

	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetMaxPoolSize(poolSize)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return client, nil
}
