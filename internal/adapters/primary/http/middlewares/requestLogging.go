package middlewares

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	maxRequestIDLength = 64
)

// RequestID берёт id запроса из заголовка или генерирует новый, кладёт в контекст gin и в ответ
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID id текущего запроса, пусто если RequestID не подключён
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// чужой id попадает в логи и заголовки ответа, поэтому только печатный ASCII ограниченной длины
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestLogger одна запись на запрос, уровень по статусу ответа.
// Путь пишется шаблоном маршрута: в URL вебхука может оказаться секрет. skipPaths не логируются при статусе < 400
func RequestLogger(log *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if status < 400 && slices.Contains(skipPaths, route) {
			return
		}

		var level slog.Level
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		default:
			level = slog.LevelInfo
		}

		log.LogAttrs(c.Request.Context(), level, "request completed",
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("request_size", int(c.Request.ContentLength)),
			slog.Int("response_size", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
