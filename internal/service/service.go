// service содержит бизнес-логику digest-сервиса: сборку дайджеста
// из лент, обогащения, генерации и кэша.
package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/estate-digest/internal/cache"
	"github.com/pribylovaa/estate-digest/internal/config"
	"github.com/pribylovaa/estate-digest/internal/fetcher"
	"github.com/pribylovaa/estate-digest/internal/models"
)

var (
	// ErrNoData — данных нет нигде: апстрим пуст и кэш холодный.
	// Транспорт: 503. Единственная ошибка подсистемы, видимая клиенту.
	ErrNoData = errors.New("no data available")
)

// Registry — реестр источников по scope.
type Registry interface {
	For(scope string) []models.FeedSource
	URL(src models.FeedSource) string
}

// Fetcher — исходящий HTTP с жёстким лимитом времени.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (fetcher.Result, error)
}

// FeedParser — извлечение элементов из текста ленты.
// Реализация обязана быть безопасной для конкурентных вызовов.
type FeedParser interface {
	Parse(xmlText string, src models.FeedSource) []models.RawItem
}

// Enricher — обогащение батча метаданными страниц.
// Сбой любого элемента деградирует локально и не валит батч.
type Enricher interface {
	EnrichAll(ctx context.Context, items []models.RawItem) []models.EnrichedItem
}

// Generator — внешний генератор резюме и топ-подборки.
// Любая его ошибка переводит конвейер на детерминированный фолбэк.
type Generator interface {
	Summaries(ctx context.Context, items []models.RawItem) (map[string]models.Summary, error)
	TopPicks(ctx context.Context, items []models.NewsItem) ([]models.TopEntry, error)
}

// RatesSource — best-effort срез ставок.
type RatesSource interface {
	Snapshot(ctx context.Context) (*models.RateSnapshot, error)
}

// Deps — зависимости сервиса. Generator и Rates допускают nil:
// без генератора работает фолбэк, без источника ставок rates=null.
type Deps struct {
	Registry Registry
	Fetcher  Fetcher
	Parser   FeedParser
	Enricher Enricher
	Generator Generator
	Rates     RatesSource
	Cache     cache.Cache
	// Now — часы сервиса; nil откатывается к time.Now.
	Now func() time.Time
}

// Service — оркестратор дайджеста.
type Service struct {
	cfg       config.Config
	registry  Registry
	fetcher   Fetcher
	parser    FeedParser
	enricher  Enricher
	generator Generator
	rates     RatesSource
	cache     cache.Cache
	now       func() time.Time

	// group схлопывает конкурентные обновления одного scope:
	// первый вызов строит дайджест, остальные ждут его результат.
	group singleflight.Group
}

// New создаёт новый экземпляр Service.
func New(cfg config.Config, deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		cfg:       cfg,
		registry:  deps.Registry,
		fetcher:   deps.Fetcher,
		parser:    deps.Parser,
		enricher:  deps.Enricher,
		generator: deps.Generator,
		rates:     deps.Rates,
		cache:     deps.Cache,
		now:       now,
	}
}
