package service

import (
	"context"
)

// IAlerterService алерт в служебный чат. Повторы одного текста реализация гасит сама
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
