package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIResponse базовая структура ответа от Telegram API
type APIResponse struct {
	OK          bool                `json:"ok"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters retry_after приходит вместе с 429
type ResponseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// APIError ответ с ok=false
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error in %s: %s (code: %d)", e.Method, e.Description, e.Code)
}

// IsForbidden бот заблокирован пользователем или ещё не запущен в личке
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden
}

// IsNotModified editMessageText с тем же содержимым
func IsNotModified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified")
}

// IsConflict getUpdates при активном вебхуке или втором экземпляре бота
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}
