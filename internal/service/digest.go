package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/pribylovaa/estate-digest/internal/cache"
	"github.com/pribylovaa/estate-digest/internal/models"
	"github.com/pribylovaa/estate-digest/pkg/log"
)

// Digest возвращает дайджест для scope с политикой stale-while-revalidate:
//
//   - свежая запись кэша отдаётся без единого исходящего вызова;
//   - холодный/просроченный кэш запускает сборку; конкурентные сборки
//     одного scope схлопываются в один полёт;
//   - сбой сборки при наличии любой записи кэша отдаёт её со Stale=true;
//   - ErrNoData возвращается только когда данных нет нигде.
func (s *Service) Digest(ctx context.Context, scope string) (models.Digest, error) {
	const op = "service/digest/Digest"

	scope = strings.TrimSpace(scope)
	key := cache.Key(scope)
	lg := log.From(ctx)

	entry, found, err := s.cache.Get(ctx, scope)
	if err != nil {
		lg.Warn("cache_get_error",
			slog.String("op", op),
			slog.String("scope", key),
			slog.String("err", err.Error()),
		)
		found = false
	}

	if found && cache.IsFresh(entry, s.cfg.Cache.TTL, s.now()) {
		lg.Info("digest_cache_hit",
			slog.String("op", op),
			slog.String("scope", key),
		)
		return entry.Payload, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.buildDigest(ctx, scope)
	})
	if err != nil {
		if found {
			lg.Warn("digest_stale_served",
				slog.String("op", op),
				slog.String("scope", key),
				slog.String("err", err.Error()),
			)

			stale := entry.Payload
			stale.Stale = true
			return stale, nil
		}

		return models.Digest{}, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("digest_refreshed",
		slog.String("op", op),
		slog.String("scope", key),
		slog.Bool("shared", shared),
	)

	return v.(models.Digest), nil
}

// buildDigest выполняет один проход конвейера:
// ленты -> merge -> dedupe -> cap -> (enrich ∥ rates) -> summaries ->
// сортировка по свежести -> top3 -> запись в кэш.
func (s *Service) buildDigest(ctx context.Context, scope string) (models.Digest, error) {
	const op = "service/digest/buildDigest"

	lg := log.From(ctx)

	raw := dedupe(s.fetchAll(ctx, scope))
	if len(raw) == 0 {
		return models.Digest{}, fmt.Errorf("%s: %w", op, ErrNoData)
	}

	if len(raw) > s.cfg.Feeds.BatchLimit {
		raw = raw[:s.cfg.Feeds.BatchLimit]
	}

	// Ставки независимы от остального конвейера — тянем параллельно
	// с обогащением; сбой просто оставляет rates=null.
	var snap *models.RateSnapshot
	ratesDone := make(chan struct{})
	go func() {
		defer close(ratesDone)

		if s.rates == nil {
			return
		}
		r, err := s.rates.Snapshot(ctx)
		if err != nil {
			lg.Warn("rates_unavailable",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return
		}
		snap = r
	}()

	enriched := s.enricher.EnrichAll(ctx, raw)
	items := s.summarize(ctx, raw, enriched)
	sortByRecency(items)

	top3 := s.pickTop(ctx, items)
	<-ratesDone

	digest := models.Digest{
		OK:          true,
		GeneratedAt: s.now().UTC(),
		Scope:       scope,
		Rates:       snap,
		Top3:        top3,
		Items:       items,
	}

	if err := s.cache.Put(ctx, scope, digest); err != nil {
		lg.Warn("cache_put_error",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	lg.Info("digest_built",
		slog.String("op", op),
		slog.Int("items", len(items)),
		slog.Int("top3", len(top3)),
		slog.Bool("rates", snap != nil),
	)

	return digest, nil
}

// fetchAll опрашивает три категории параллельно и сливает результаты
// в детерминированном порядке источников, независимо от порядка
// завершения горутин. Сбой одной ленты не затрагивает соседние.
func (s *Service) fetchAll(ctx context.Context, scope string) []models.RawItem {
	const op = "service/digest/fetchAll"

	lg := log.From(ctx)
	srcs := s.registry.For(scope)
	perSource := make([][]models.RawItem, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)

		go func(i int, src models.FeedSource) {
			defer wg.Done()

			res, err := s.fetcher.Fetch(ctx, s.registry.URL(src), s.cfg.Feeds.Timeout)
			if err != nil {
				lg.Warn("feed_fetch_error",
					slog.String("op", op),
					slog.String("source", src.Name),
					slog.String("err", err.Error()),
				)
				return
			}
			if !res.OK {
				lg.Warn("feed_fetch_status",
					slog.String("op", op),
					slog.String("source", src.Name),
					slog.Int("status", res.Status),
				)
				return
			}

			items := s.parser.Parse(res.Body, src)
			if limit := s.cfg.Feeds.PerSourceLimit; len(items) > limit {
				items = items[:limit]
			}
			perSource[i] = items
		}(i, src)
	}
	wg.Wait()

	var merged []models.RawItem
	for _, items := range perSource {
		merged = append(merged, items...)
	}

	return merged
}

// summarize собирает NewsItem из обогащённых элементов и резюме генератора;
// для всех пропущенных или несгенерированных элементов работает
// детерминированный фолбэк.
func (s *Service) summarize(ctx context.Context, raw []models.RawItem, enriched []models.EnrichedItem) []models.NewsItem {
	const op = "service/digest/summarize"

	summaries := map[string]models.Summary{}
	if s.generator != nil {
		m, err := s.generator.Summaries(ctx, raw)
		if err != nil {
			log.From(ctx).Warn("summaries_fallback",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else {
			summaries = m
		}
	}

	rawByID := make(map[string]models.RawItem, len(raw))
	for _, r := range raw {
		rawByID[r.ID] = r
	}

	items := make([]models.NewsItem, 0, len(enriched))
	for _, e := range enriched {
		sum, ok := summaries[e.ID]
		if !ok {
			sum = fallbackSummary(rawByID[e.ID])
		}

		items = append(items, models.NewsItem{
			ID:           e.ID,
			Category:     e.Category,
			Title:        e.Title,
			URL:          e.URL,
			PublishedAt:  e.PublishedAt,
			Source:       e.Source,
			Image:        e.Image,
			Summary:      sum.Summary,
			WhyItMatters: sum.WhyItMatters,
		})
	}

	return items
}

// pickTop выбирает тройку генератором, с фолбэком «три самых свежих».
func (s *Service) pickTop(ctx context.Context, items []models.NewsItem) []models.TopEntry {
	const op = "service/digest/pickTop"

	if s.generator != nil {
		in := items
		if len(in) > s.cfg.LLM.TopInput {
			in = in[:s.cfg.LLM.TopInput]
		}

		top, err := s.generator.TopPicks(ctx, in)
		if err != nil {
			log.From(ctx).Warn("top_picks_fallback",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else if len(top) > 0 {
			if len(top) > 3 {
				top = top[:3]
			}
			return top
		}
	}

	return topFromRecency(items)
}

// sortByRecency сортирует по publishedAt по убыванию строго после фан-ина:
// нулевое время трактуется как самое раннее. Stable сохраняет
// детерминированный порядок при равных датах.
func sortByRecency(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}
