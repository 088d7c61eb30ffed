package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery паника в обработчике - 500 и стек в лог. Telegram повторит апдейт, если вебхук не ответил 200.
// http.ErrAbortHandler пробрасывается дальше: это штатный обрыв соединения
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			log.Error("http handler panicked",
				"panic", r,
				"request_id", GetRequestID(c),
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "internal server error",
				"request_id": GetRequestID(c),
			})
		}()
		c.Next()
	}
}
