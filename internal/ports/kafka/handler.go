package kafka

import "context"

// MessageHandler обработка одного сообщения из топика.
// Ошибка, обёрнутая в domain.BusinessError, означает, что повторять сообщение не нужно
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, value []byte) error
}
