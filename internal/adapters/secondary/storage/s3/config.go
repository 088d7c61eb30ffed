package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config выгрузка логов включается, только если задан Host (localhost:9000 для MinIO)
type Config struct {
	Host         string        `envconfig:"HOST"`
	AccessKey    string        `envconfig:"ACCESS_KEY"`
	SecretKey    string        `envconfig:"SECRET_KEY"`
	Region       string        `envconfig:"REGION"`
	Bucket       string        `envconfig:"BUCKET" default:"dose-logs"`
	UseSSL       bool          `envconfig:"USE_SSL" default:"false"`
	CreateBucket bool          `envconfig:"CREATE_BUCKET" default:"false"` // удобно для локального MinIO
	LinkTTL      time.Duration `envconfig:"LINK_TTL" default:"15m"`
}

func (c *Config) Enabled() bool {
	return c.Host != ""
}

// NewClient клиент MinIO; бакет должен существовать, если не включён CreateBucket
func (c *Config) NewClient(ctx context.Context) (*minio.Client, error) {
	client, err := minio.New(c.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	switch {
	case exists:
	case c.CreateBucket:
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{Region: c.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", c.Bucket, err)
		}
	default:
		return nil, fmt.Errorf("bucket %s does not exist", c.Bucket)
	}

	return client, nil
}
