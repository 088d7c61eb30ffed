package doselog

import (
	"log/slog"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/repository"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

const (
	defaultStoreTimeout  = 5 * time.Second
	defaultExportTimeout = 30 * time.Second
)

// Config настройки отображения и таймаутов
type Config struct {
	PageSize       int
	TimestampStyle domain.TimestampStyle
	Location       *time.Location
	StoreTimeout   time.Duration
	ExportTimeout  time.Duration
}

// Service команда /log: запись, просмотр, удаление, сброс и выгрузка лога доз
type Service struct {
	Repo      repository.IDoseLogRepo
	Paginator service.IPaginator
	Responder service.IResponder
	Exporter  service.ILogExporter // nil, если S3 не настроен
	Log       *slog.Logger

	cfg Config
	now func() time.Time
}

func New(
	repo repository.IDoseLogRepo,
	paginator service.IPaginator,
	responder service.IResponder,
	exporter service.ILogExporter,
	cfg Config,
	log *slog.Logger,
) *Service {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.ExportTimeout <= 0 {
		cfg.ExportTimeout = defaultExportTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = domain.DefaultPageSize
	}
	if !cfg.TimestampStyle.IsValid() {
		cfg.TimestampStyle = domain.TimestampAbsolute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Service{
		Repo:      repo,
		Paginator: paginator,
		Responder: responder,
		Exporter:  exporter,
		Log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) renderOptions() domain.RenderOptions {
	return domain.RenderOptions{
		PageSize: s.cfg.PageSize,
		Timestamps: domain.TimestampPolicy{
			Style:    s.cfg.TimestampStyle,
			Location: s.cfg.Location,
			Now:      s.now(),
		},
	}
}
