// enrich — обогащение элементов метаданными целевых страниц.
//
// Для каждого элемента: разрешаем редиректы, забираем страницу и
// вытаскиваем og:image/twitter:image и og:site_name. Любой сбой
// деградирует до исходного элемента — батч не падает никогда.
package enrich

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/estate-digest/internal/fetcher"
	"github.com/pribylovaa/estate-digest/internal/models"
	"github.com/pribylovaa/estate-digest/pkg/log"
)

// Enricher выполняет фан-аут обогащения по батчу.
// Ширина фан-аута ограничена семафором независимо от размера батча.
type Enricher struct {
	client  *fetcher.Client
	timeout time.Duration
	maxConc int
}

// New создаёт Enricher. timeout — независимый лимит каждого исходящего
// вызова; maxConcurrent <= 0 откатывается к 6.
func New(client *fetcher.Client, timeout time.Duration, maxConcurrent int) *Enricher {
	if maxConcurrent <= 0 {
		maxConcurrent = 6
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Enricher{client: client, timeout: timeout, maxConc: maxConcurrent}
}

// EnrichAll обогащает батч параллельно и возвращает результаты в порядке
// входа, независимо от порядка завершения горутин. Отмена/сбой одного
// элемента не затрагивает соседние.
func (e *Enricher) EnrichAll(ctx context.Context, items []models.RawItem) []models.EnrichedItem {
	out := make([]models.EnrichedItem, len(items))

	sem := make(chan struct{}, e.maxConc)
	var wg sync.WaitGroup

	for i, it := range items {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, it models.RawItem) {
			defer wg.Done()
			defer func() { <-sem }()

			out[i] = e.enrichOne(ctx, it)
		}(i, it)
	}

	wg.Wait()
	return out
}

// enrichOne — два шага с деградацией на каждом:
//  1. разрешение финального URL; при сбое остаётся исходный;
//  2. скрейп метаданных страницы; при сбое элемент идёт без image.
func (e *Enricher) enrichOne(ctx context.Context, raw models.RawItem) models.EnrichedItem {
	const op = "enrich/enrichOne"

	item := models.EnrichedItem{
		ID:          raw.ID,
		Category:    raw.Category,
		Title:       raw.Title,
		URL:         raw.URL,
		PublishedAt: raw.PublishedAt,
		Source:      raw.Source,
	}

	finalURL, err := e.client.Resolve(ctx, raw.URL, e.timeout)
	if err != nil {
		log.From(ctx).Debug("resolve_failed",
			slog.String("op", op),
			slog.String("url", raw.URL),
			slog.String("err", err.Error()),
		)
	}
	item.URL = finalURL

	res, err := e.client.Fetch(ctx, finalURL, e.timeout)
	if err != nil || !res.OK {
		return item
	}

	if img := pickMetaProperty(res.Body, "og:image"); img != "" {
		item.Image = img
	} else if img := pickMetaName(res.Body, "twitter:image"); img != "" {
		item.Image = img
	}

	if item.Source == "" {
		if site := pickMetaProperty(res.Body, "og:site_name"); site != "" {
			item.Source = site
		}
	}

	return item
}

// Метатэги пишут атрибуты в обоих порядках: property→content и content→property.
var metaRes sync.Map // key string -> [2]*regexp.Regexp

func metaPatterns(attr, key string) [2]*regexp.Regexp {
	cacheKey := attr + "\x00" + key
	if v, ok := metaRes.Load(cacheKey); ok {
		return v.([2]*regexp.Regexp)
	}

	qk := regexp.QuoteMeta(key)
	pair := [2]*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta[^>]+` + attr + `=["']` + qk + `["'][^>]+content=["']([^"']+)["'][^>]*>`),
		regexp.MustCompile(`(?i)<meta[^>]+content=["']([^"']+)["'][^>]+` + attr + `=["']` + qk + `["'][^>]*>`),
	}

	metaRes.Store(cacheKey, pair)
	return pair
}

func pickMeta(html, attr, key string) string {
	for _, re := range metaPatterns(attr, key) {
		if m := re.FindStringSubmatch(html); len(m) >= 2 {
			return strings.TrimSpace(m[1])
		}
	}

	return ""
}

func pickMetaProperty(html, key string) string { return pickMeta(html, "property", key) }

func pickMetaName(html, key string) string { return pickMeta(html, "name", key) }
