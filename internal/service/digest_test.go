package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/estate-digest/internal/cache"
	"github.com/pribylovaa/estate-digest/internal/config"
	"github.com/pribylovaa/estate-digest/internal/fetcher"
	"github.com/pribylovaa/estate-digest/internal/models"
	"github.com/pribylovaa/estate-digest/mocks"
)

// fakeClock — управляемые часы для детерминированных проверок TTL.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// digestEnv — общая обвязка тестов конвейера: моки всех зависимостей,
// кэш в памяти и счётчик исходящих запросов к лентам.
type digestEnv struct {
	cfg   config.Config
	clock *fakeClock

	registry *mocks.MockRegistry
	fetch    *mocks.MockFetcher
	parser   *mocks.MockFeedParser
	enricher *mocks.MockEnricher
	cache    *cache.Memory

	fetchCalls   atomic.Int64
	failFeeds    atomic.Bool
	fetchGate    chan struct{}
	fetchStarted chan struct{}
}

func newDigestEnv(t *testing.T) *digestEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := newFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	env := &digestEnv{
		cfg: config.Config{
			Feeds: config.FeedsConfig{
				Timeout:        time.Second,
				PerSourceLimit: 8,
				BatchLimit:     18,
			},
			LLM:   config.LLMConfig{TopInput: 14},
			Cache: config.CacheConfig{TTL: 10 * time.Minute},
		},
		clock:    clock,
		registry: mocks.NewMockRegistry(ctrl),
		fetch:    mocks.NewMockFetcher(ctrl),
		parser:   mocks.NewMockFeedParser(ctrl),
		enricher: mocks.NewMockEnricher(ctrl),
		cache:    cache.NewMemory(clock.Now),
	}

	// Обогащение в тестах конвейера — сквозное: метаданные страниц
	// проверяются в своём пакете.
	env.enricher.EXPECT().EnrichAll(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, items []models.RawItem) []models.EnrichedItem {
			out := make([]models.EnrichedItem, 0, len(items))
			for _, it := range items {
				out = append(out, models.EnrichedItem{
					ID:          it.ID,
					Category:    it.Category,
					Title:       it.Title,
					URL:         it.URL,
					PublishedAt: it.PublishedAt,
					Source:      it.Source,
				})
			}
			return out
		}).AnyTimes()

	return env
}

// serveFeeds настраивает реестр, фетчер и парсер: три источника,
// содержимое каждого определяется его категорией.
func (e *digestEnv) serveFeeds(perSource map[models.Category][]models.RawItem) {
	srcs := []models.FeedSource{
		{Name: "credit", Category: models.CategoryCredit},
		{Name: "market", Category: models.CategoryMarket},
		{Name: "legal", Category: models.CategoryLegal},
	}

	e.registry.EXPECT().For(gomock.Any()).Return(srcs).AnyTimes()
	e.registry.EXPECT().URL(gomock.Any()).DoAndReturn(
		func(src models.FeedSource) string {
			return "https://feeds.test/" + src.Name
		}).AnyTimes()

	e.fetch.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, url string, _ time.Duration) (fetcher.Result, error) {
			e.fetchCalls.Add(1)

			if e.fetchGate != nil {
				e.fetchStarted <- struct{}{}
				<-e.fetchGate
			}
			if e.failFeeds.Load() {
				return fetcher.Result{}, errors.New("upstream down")
			}
			return fetcher.Result{OK: true, Status: 200, Body: url, FinalURL: url}, nil
		}).AnyTimes()

	e.parser.EXPECT().Parse(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ string, src models.FeedSource) []models.RawItem {
			return perSource[src.Category]
		}).AnyTimes()
}

func (e *digestEnv) newService(gen Generator, rates RatesSource) *Service {
	return New(e.cfg, Deps{
		Registry:  e.registry,
		Fetcher:   e.fetch,
		Parser:    e.parser,
		Enricher:  e.enricher,
		Generator: gen,
		Rates:     rates,
		Cache:     e.cache,
		Now:       e.clock.Now,
	})
}

// feedBatch генерирует n элементов категории с убывающей свежестью.
func feedBatch(cat models.Category, prefix string, n int, base time.Time) []models.RawItem {
	out := make([]models.RawItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.RawItem{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			Category:    cat,
			Title:       fmt.Sprintf("%s headline %d", prefix, i),
			URL:         fmt.Sprintf("https://news.test/%s/%d", prefix, i),
			PublishedAt: base.Add(-time.Duration(i) * time.Hour),
			Snippet:     "snippet " + prefix,
		})
	}
	return out
}

// TestDigest_BuildsFullDigest проверяет полный проход конвейера:
// слияние трёх лент, межленточный дедуп, сортировку по свежести,
// фолбэчную тройку как подмножество items и прикреплённые ставки.
func TestDigest_BuildsFullDigest(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	base := env.clock.Now()

	credit := feedBatch(models.CategoryCredit, "credit", 8, base)
	market := feedBatch(models.CategoryMarket, "market", 6, base.Add(-time.Minute))
	legal := feedBatch(models.CategoryLegal, "legal", 4, base.Add(-2*time.Minute))
	// Синдицированный дубль между лентами: выживает только кредитный.
	market[0].Title = credit[0].Title

	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryCredit: credit,
		models.CategoryMarket: market,
		models.CategoryLegal:  legal,
	})

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	snap := &models.RateSnapshot{
		Reference: &models.RateValue{Value: "5.75", Date: "2025-03-06"},
	}
	rates := mocks.NewMockRatesSource(ctrl)
	rates.EXPECT().Snapshot(gomock.Any()).Return(snap, nil).AnyTimes()

	svc := env.newService(nil, rates)

	got, err := svc.Digest(context.Background(), "Warszawa")
	require.NoError(t, err)

	require.True(t, got.OK)
	require.False(t, got.Stale)
	require.Equal(t, "Warszawa", got.Scope)
	require.Equal(t, base.UTC(), got.GeneratedAt)
	require.Equal(t, snap, got.Rates)
	require.Len(t, got.Items, 17)

	for i := 1; i < len(got.Items); i++ {
		require.False(t, got.Items[i].PublishedAt.After(got.Items[i-1].PublishedAt),
			"items must be ordered by recency")
	}

	byURL := make(map[string]struct{}, len(got.Items))
	for _, it := range got.Items {
		byURL[it.URL] = struct{}{}
		require.NotEmpty(t, it.Summary)
		require.Equal(t, fallbackWhy[it.Category], it.WhyItMatters)
	}
	require.Len(t, got.Top3, 3)
	for _, top := range got.Top3 {
		require.Contains(t, byURL, top.URL)
	}

	// Повторный вызов обслуживается кэшем без единого исходящего запроса.
	calls := env.fetchCalls.Load()
	again, err := svc.Digest(context.Background(), "Warszawa")
	require.NoError(t, err)
	require.Equal(t, got.GeneratedAt, again.GeneratedAt)
	require.Equal(t, calls, env.fetchCalls.Load())
}

// TestDigest_FreshnessBoundary проверяет границу TTL: запись моложе
// десяти минут отдаётся из кэша, после границы запускается пересборка.
func TestDigest_FreshnessBoundary(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryMarket: feedBatch(models.CategoryMarket, "market", 2, env.clock.Now()),
	})

	svc := env.newService(nil, nil)
	ctx := context.Background()

	_, err := svc.Digest(ctx, "")
	require.NoError(t, err)
	require.EqualValues(t, 3, env.fetchCalls.Load())

	env.clock.Advance(9*time.Minute + 59*time.Second)
	_, err = svc.Digest(ctx, "")
	require.NoError(t, err)
	require.EqualValues(t, 3, env.fetchCalls.Load())

	env.clock.Advance(2 * time.Second)
	_, err = svc.Digest(ctx, "")
	require.NoError(t, err)
	require.EqualValues(t, 6, env.fetchCalls.Load())
}

// TestDigest_StaleReplayOnFailure проверяет переигрывание просроченного
// кэша при сбое пересборки: клиент получает старые данные со Stale=true.
func TestDigest_StaleReplayOnFailure(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryCredit: feedBatch(models.CategoryCredit, "credit", 3, env.clock.Now()),
	})

	svc := env.newService(nil, nil)
	ctx := context.Background()

	first, err := svc.Digest(ctx, "Kraków")
	require.NoError(t, err)
	require.False(t, first.Stale)

	env.clock.Advance(11 * time.Minute)
	env.failFeeds.Store(true)

	stale, err := svc.Digest(ctx, "Kraków")
	require.NoError(t, err)
	require.True(t, stale.Stale)
	require.Equal(t, first.GeneratedAt, stale.GeneratedAt)
	require.Equal(t, first.Items, stale.Items)
}

// TestDigest_ColdEmptyReturnsErrNoData проверяет единственный «жёсткий»
// отказ: кэш холодный и все ленты недоступны.
func TestDigest_ColdEmptyReturnsErrNoData(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	env.serveFeeds(map[models.Category][]models.RawItem{})
	env.failFeeds.Store(true)

	svc := env.newService(nil, nil)

	_, err := svc.Digest(context.Background(), "")
	require.ErrorIs(t, err, ErrNoData)
}

// TestDigest_GeneratorPath проверяет счастливый путь генератора:
// резюме подставляются по ID, недостающие закрываются фолбэком,
// тройка генератора усечкой ограничивается тремя элементами.
func TestDigest_GeneratorPath(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	base := env.clock.Now()
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryCredit: feedBatch(models.CategoryCredit, "credit", 4, base),
	})

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	gen := mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Summaries(gomock.Any(), gomock.Any()).Return(map[string]models.Summary{
		"credit-0": {Summary: "generated summary", WhyItMatters: "generated why"},
	}, nil)
	gen.EXPECT().TopPicks(gomock.Any(), gomock.Any()).Return([]models.TopEntry{
		{Title: "t1", URL: "u1", Category: models.CategoryCredit},
		{Title: "t2", URL: "u2", Category: models.CategoryCredit},
		{Title: "t3", URL: "u3", Category: models.CategoryCredit},
		{Title: "t4", URL: "u4", Category: models.CategoryCredit},
	}, nil)

	svc := env.newService(gen, nil)

	got, err := svc.Digest(context.Background(), "")
	require.NoError(t, err)

	byID := make(map[string]models.NewsItem, len(got.Items))
	for _, it := range got.Items {
		byID[it.ID] = it
	}

	require.Equal(t, "generated summary", byID["credit-0"].Summary)
	require.Equal(t, "generated why", byID["credit-0"].WhyItMatters)
	require.Equal(t, fallbackWhy[models.CategoryCredit], byID["credit-1"].WhyItMatters)

	require.Len(t, got.Top3, 3)
	require.Equal(t, "t1", got.Top3[0].Title)
}

// TestDigest_GeneratorFailureFallsBack проверяет деградацию при полном
// отказе генератора: детерминированные резюме и тройка по свежести.
func TestDigest_GeneratorFailureFallsBack(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	base := env.clock.Now()
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryMarket: feedBatch(models.CategoryMarket, "market", 5, base),
	})

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	gen := mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Summaries(gomock.Any(), gomock.Any()).Return(nil, errors.New("llm down"))
	gen.EXPECT().TopPicks(gomock.Any(), gomock.Any()).Return(nil, errors.New("llm down"))

	svc := env.newService(gen, nil)

	got, err := svc.Digest(context.Background(), "")
	require.NoError(t, err)
	require.True(t, got.OK)

	for _, it := range got.Items {
		require.NotEmpty(t, it.Summary)
		require.Equal(t, fallbackWhy[models.CategoryMarket], it.WhyItMatters)
	}

	require.Len(t, got.Top3, 3)
	require.Equal(t, got.Items[0].URL, got.Top3[0].URL)
	require.Equal(t, got.Items[1].URL, got.Top3[1].URL)
	require.Equal(t, got.Items[2].URL, got.Top3[2].URL)
}

// TestDigest_PerSourceAndBatchCaps проверяет оба потолка: не больше
// восьми элементов с ленты и не больше восемнадцати в батче.
func TestDigest_PerSourceAndBatchCaps(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	base := env.clock.Now()
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryCredit: feedBatch(models.CategoryCredit, "credit", 12, base),
		models.CategoryMarket: feedBatch(models.CategoryMarket, "market", 12, base),
		models.CategoryLegal:  feedBatch(models.CategoryLegal, "legal", 12, base),
	})

	svc := env.newService(nil, nil)

	got, err := svc.Digest(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got.Items, 18)

	perCat := map[models.Category]int{}
	for _, it := range got.Items {
		perCat[it.Category]++
	}
	for cat, n := range perCat {
		require.LessOrEqual(t, n, 8, "category %s exceeds per-source cap", cat)
	}
}

// TestDigest_RatesFailureNonFatal проверяет best-effort ставки:
// их сбой оставляет rates пустым и не трогает остальной дайджест.
func TestDigest_RatesFailureNonFatal(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryLegal: feedBatch(models.CategoryLegal, "legal", 2, env.clock.Now()),
	})

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	rates := mocks.NewMockRatesSource(ctrl)
	rates.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("nbp unreachable"))

	svc := env.newService(nil, rates)

	got, err := svc.Digest(context.Background(), "")
	require.NoError(t, err)
	require.True(t, got.OK)
	require.Nil(t, got.Rates)
	require.Len(t, got.Items, 2)
}

// TestDigest_ConcurrentRefreshCoalesced проверяет схлопывание
// конкурентных пересборок одного scope в один полёт.
func TestDigest_ConcurrentRefreshCoalesced(t *testing.T) {
	t.Parallel()

	env := newDigestEnv(t)
	env.fetchGate = make(chan struct{})
	env.fetchStarted = make(chan struct{}, 8)
	env.serveFeeds(map[models.Category][]models.RawItem{
		models.CategoryMarket: feedBatch(models.CategoryMarket, "market", 2, env.clock.Now()),
	})

	svc := env.newService(nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]models.Digest, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.Digest(ctx, "Gdańsk")
	}()

	// Дожидаемся входа первой сборки в фетч, затем подвешиваем вторую
	// на том же scope и только после этого отпускаем ленты.
	<-env.fetchStarted

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = svc.Digest(ctx, "Gdańsk")
	}()

	time.Sleep(100 * time.Millisecond)
	close(env.fetchGate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.EqualValues(t, 3, env.fetchCalls.Load())
	require.Equal(t, results[0].GeneratedAt, results[1].GeneratedAt)
}
