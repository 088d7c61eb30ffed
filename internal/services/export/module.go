package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
	"github.com/admin/tg-bots/dose-bot/internal/ports/storage"
)

const contentType = "application/json"

// Service выгрузка лога в S3 одним JSON-файлом со ссылкой на скачивание
type Service struct {
	Storage storage.IS3Client
	Log     *slog.Logger

	linkTTL time.Duration
	now     func() time.Time
}

func New(s3 storage.IS3Client, linkTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		Storage: s3,
		Log:     log,
		linkTTL: linkTTL,
		now:     time.Now,
	}
}

var _ service.ILogExporter = (*Service)(nil)

type document struct {
	UserID     int64                    `json:"userID"`
	ExportedAt time.Time                `json:"exportedAt"`
	Doses      map[string][]entryRecord `json:"doses"`
}

type entryRecord struct {
	Drug  string          `json:"drug"`
	Dose  decimal.Decimal `json:"dose"`
	Units string          `json:"units"`
	Route string          `json:"route"`
	Date  time.Time       `json:"date"`
}

// Export year пустой - весь лог
func (s *Service) Export(ctx context.Context, log *domain.DoseLog, year string) (string, error) {
	doc := document{
		UserID:     log.UserID,
		ExportedAt: s.now().UTC(),
		Doses:      make(map[string][]entryRecord),
	}

	years := log.Years()
	if year != "" {
		years = []string{year}
	}
	for _, y := range years {
		for _, entry := range log.Entries(y) {
			doc.Doses[y] = append(doc.Doses[y], entryRecord{
				Drug:  entry.Drug,
				Dose:  entry.Amount,
				Units: string(entry.Unit),
				Route: string(entry.Route),
				Date:  entry.RecordedAt.UTC(),
			})
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	path := ObjectPath(log.UserID, year, uuid.New())
	if err := s.Storage.PutFile(ctx, path, data, contentType); err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := s.Storage.GetPresignedURL(ctx, path, s.linkTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign export: %w", err)
	}

	s.Log.Debug("log exported", "user_id", log.UserID, "year", year, "path", path)
	return url, nil
}

// ObjectPath exports/<user>/<год или all>-<uuid>.json
func ObjectPath(userID int64, year string, id uuid.UUID) string {
	if year == "" {
		year = "all"
	}
	return fmt.Sprintf("exports/%d/%s-%s.json", userID, year, id)
}
