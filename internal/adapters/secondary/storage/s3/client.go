package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/admin/tg-bots/dose-bot/internal/ports/storage"
)

const defaultLinkTTL = 5 * time.Minute

// Client объекты выгрузок в одном бакете
type Client struct {
	minio  *minio.Client
	bucket string
	log    *slog.Logger
}

func NewClient(client *minio.Client, bucket string, log *slog.Logger) storage.IS3Client {
	return &Client{minio: client, bucket: bucket, log: log}
}

func (c *Client) PutFile(ctx context.Context, objectPath string, data []byte, contentType string) error {
	info, err := c.minio.PutObject(ctx, c.bucket, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: attachment(objectPath),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", objectPath, err)
	}

	c.log.Debug("object uploaded", "bucket", c.bucket, "path", objectPath, "size", info.Size)
	return nil
}

// GetPresignedURL ссылка на скачивание; браузер сохранит файл под коротким именем, а не под полным путём
func (c *Client) GetPresignedURL(ctx context.Context, objectPath string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = defaultLinkTTL
	}

	params := url.Values{}
	params.Set("response-content-disposition", attachment(objectPath))

	u, err := c.minio.PresignedGetObject(ctx, c.bucket, objectPath, expires, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s: %w", objectPath, err)
	}
	return u.String(), nil
}

func attachment(objectPath string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(objectPath)})
}
