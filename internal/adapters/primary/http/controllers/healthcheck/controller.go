package healthcheckController

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger зависимость, без которой бот не готов (хранилище логов, Redis)
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc адаптер для клиентов с другой сигнатурой
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthCheckController struct {
	deps map[string]Pinger
	log  *slog.Logger
}

func New(deps map[string]Pinger, log *slog.Logger) *HealthCheckController {
	return &HealthCheckController{
		deps: deps,
		log:  log,
	}
}

func (c *HealthCheckController) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", c.health)
	r.GET("/ready", c.ready)
}

// health базовая проверка (всегда возвращает 200)
func (c *HealthCheckController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "dose-bot",
	})
}

// ready пингует все зависимости
func (c *HealthCheckController) ready(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range c.deps {
		if err := dep.Ping(pingCtx); err != nil {
			c.log.Error("dependency not ready", "dependency", name, "error", err)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  name + " unavailable",
			})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
