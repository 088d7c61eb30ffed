package doseLogRepo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// entryRecord формат записи в хранилище: {drug, dose, units, route, date}
type entryRecord struct {
	Drug  string    `json:"drug" bson:"drug"`
	Dose  float64   `json:"dose" bson:"dose"`
	Units string    `json:"units" bson:"units"`
	Route string    `json:"route" bson:"route"`
	Date  time.Time `json:"date" bson:"date"`
}

// toRecord время округляется до миллисекунд, дальше Mongo всё равно не хранит
func toRecord(e domain.Entry) entryRecord {
	return entryRecord{
		Drug:  e.Drug,
		Dose:  e.Amount.InexactFloat64(),
		Units: string(e.Unit),
		Route: string(e.Route),
		Date:  e.RecordedAt.UTC().Truncate(time.Millisecond),
	}
}

func (r entryRecord) toEntry() (domain.Entry, error) {
	unit, err := domain.ParseUnit(r.Units)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("invalid stored unit %q: %w", r.Units, err)
	}
	route, err := domain.ParseRoute(r.Route)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("invalid stored route %q: %w", r.Route, err)
	}

	return domain.Entry{
		Drug:       r.Drug,
		Amount:     decimal.NewFromFloat(r.Dose),
		Unit:       unit,
		Route:      route,
		RecordedAt: r.Date.UTC(),
	}, nil
}

func toDoseLog(userID int64, doses map[string][]entryRecord) (*domain.DoseLog, error) {
	log := &domain.DoseLog{
		UserID: userID,
		Doses:  make(map[string][]domain.Entry, len(doses)),
	}
	for year, records := range doses {
		if len(records) == 0 {
			continue
		}
		entries := make([]domain.Entry, 0, len(records))
		for _, record := range records {
			entry, err := record.toEntry()
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		log.Doses[year] = entries
	}
	return log, nil
}

// sameRecord сравнение для защиты от гонок при удалении по индексу
func sameRecord(stored entryRecord, expected domain.Entry) bool {
	want := toRecord(expected)
	return stored.Drug == want.Drug &&
		stored.Units == want.Units &&
		stored.Route == want.Route &&
		stored.Dose == want.Dose &&
		stored.Date.Equal(want.Date)
}
