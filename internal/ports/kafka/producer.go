package kafka

import (
	"context"
)

// IKafkaProducer интерфейс для отправки сообщений в Kafka
type IKafkaProducer interface {
	// Send отправляет сообщение, key определяет партицию
	Send(ctx context.Context, key string, value []byte) error
	Close() error
}
