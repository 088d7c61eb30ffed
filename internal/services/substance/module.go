package substance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/psychonautwiki"
	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/cache"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

const (
	cacheKeyPrefix  = "dosebot:substance:"
	DefaultCacheTTL = 24 * time.Hour
)

// Searcher источник сырых данных о веществах
type Searcher interface {
	SearchSubstances(ctx context.Context, query string) ([]psychonautwiki.SubstanceDTO, error)
}

// Service реализует ISubstanceLookup поверх PsychonautWiki
type Service struct {
	client Searcher
	Cache  cache.Cache // nil, если Redis не настроен
	ttl    time.Duration
	Log    *slog.Logger
}

func New(client Searcher, cacheClient cache.Cache, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		client: client,
		Cache:  cacheClient,
		ttl:    ttl,
		Log:    log,
	}
}

var _ service.ISubstanceLookup = (*Service)(nil)

// Lookup первое совпадение по запросу. Найденные вещества кэшируются
func (s *Service) Lookup(ctx context.Context, query string) (*domain.Substance, error) {
	cacheKey := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))

	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	substances, err := s.client.SearchSubstances(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search substances: %w", err)
	}
	if len(substances) == 0 {
		return nil, domain.ErrSubstanceNotFound
	}

	result := toSubstance(substances[0])
	s.toCache(ctx, cacheKey, result)
	return result, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (*domain.Substance, bool) {
	if s.Cache == nil {
		return nil, false
	}

	raw, err := s.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.Log.Warn("failed to read substance from cache", "error", err, "cache_key", key)
		}
		return nil, false
	}

	var result domain.Substance
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.Log.Warn("failed to decode cached substance", "error", err, "cache_key", key)
		return nil, false
	}
	s.Log.Debug("substance served from cache", "cache_key", key)
	return &result, true
}

func (s *Service) toCache(ctx context.Context, key string, value *domain.Substance) {
	if s.Cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.Log.Warn("failed to encode substance for cache", "error", err, "cache_key", key)
		return
	}
	if err := s.Cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.Log.Warn("failed to cache substance in Redis", "error", err, "cache_key", key)
	}
}

func toSubstance(dto psychonautwiki.SubstanceDTO) *domain.Substance {
	result := &domain.Substance{
		Name:     dto.Name,
		URL:      dto.URL,
		ImageURL: rasterImage(dto),
	}
	if dto.Class != nil {
		result.ChemicalClass = dto.Class.Chemical
		result.PsychoactiveClass = dto.Class.Psychoactive
	}
	if dto.AddictionPotential != nil {
		result.AddictionPotential = *dto.AddictionPotential
	}
	if t := dto.Tolerance; t != nil {
		tolerance := domain.Tolerance{Full: deref(t.Full), Half: deref(t.Half), Zero: deref(t.Zero)}
		if tolerance != (domain.Tolerance{}) {
			result.Tolerance = &tolerance
		}
	}

	for _, roa := range dto.Roas {
		route := domain.RouteInfo{Name: roa.Name}
		if d := roa.Dose; d != nil {
			route.Dose = &domain.DoseThresholds{
				Units:     deref(d.Units),
				Threshold: d.Threshold,
				Light:     toRange(d.Light),
				Common:    toRange(d.Common),
				Strong:    toRange(d.Strong),
				Heavy:     d.Heavy,
			}
		}
		if d := roa.Duration; d != nil {
			route.Duration = &domain.Duration{
				Onset:     toPhase(d.Onset),
				Comeup:    toPhase(d.Comeup),
				Peak:      toPhase(d.Peak),
				Offset:    toPhase(d.Offset),
				Afterglow: toPhase(d.Afterglow),
				Total:     toPhase(d.Total),
			}
		}
		result.Routes = append(result.Routes, route)
	}

	return result
}

// rasterImage первая картинка, которую Telegram умеет показать (svg не подходит)
func rasterImage(dto psychonautwiki.SubstanceDTO) string {
	for _, img := range dto.Images {
		lower := strings.ToLower(img.Image)
		if strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
			return img.Image
		}
	}
	return ""
}

func toRange(r *psychonautwiki.RangeDTO) *domain.Range {
	if r == nil || (r.Min == nil && r.Max == nil) {
		return nil
	}
	return &domain.Range{Min: r.Min, Max: r.Max}
}

func toPhase(p *psychonautwiki.PhaseDTO) *domain.Phase {
	if p == nil || (p.Min == nil && p.Max == nil) {
		return nil
	}
	return &domain.Phase{Min: p.Min, Max: p.Max, Units: deref(p.Units)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
