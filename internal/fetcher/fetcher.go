// fetcher — исходящие HTTP-запросы с жёстким wall-clock лимитом.
//
// Контракт: сетевые сбои не «протекают» дальше значения Result —
// вызывающий код ветвится по Result.OK/err локально, ничего не паникует.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/estate-digest/pkg/log"
)

// maxBodyBytes — потолок на читаемое тело ответа.
const maxBodyBytes = 5 << 20

// Браузерные заголовки: часть лент и страниц отдаёт ботам пустые ответы.
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "pl-PL,pl;q=0.9,en;q=0.8"
)

// Result — исход одного запроса.
type Result struct {
	// OK — статус в диапазоне 2xx.
	OK bool
	// Status — HTTP-статус ответа.
	Status int
	// Body — тело ответа как текст.
	Body string
	// FinalURL — адрес после всех редиректов; отличается от входного
	// при любом перенаправлении.
	FinalURL string
}

// Client — HTTP-клиент конвейера. Редиректы следуются автоматически.
type Client struct {
	http *http.Client
}

// New создаёт клиент. Пер-запросные таймауты задаются в Fetch/Resolve,
// поэтому собственный Timeout у http.Client не выставляется.
func New() *Client {
	return &Client{http: &http.Client{}}
}

// NewWithHTTP — конструктор для тестов с подменённым http.Client.
func NewWithHTTP(h *http.Client) *Client {
	if h == nil {
		h = &http.Client{}
	}
	return &Client{http: h}
}

// Fetch выполняет GET с лимитом timeout и возвращает Result.
// Ошибка означает, что ответа нет вовсе (сеть/таймаут/отмена);
// не-2xx статусы ошибкой не считаются — Result.OK=false.
func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) (Result, error) {
	const op = "fetcher/Fetch"

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%s: new request: %w", op, err)
	}
	spoofHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		log.From(ctx).Warn("fetch_error",
			slog.String("op", op),
			slog.String("url", url),
			slog.String("err", err.Error()),
		)
		return Result{}, fmt.Errorf("%s: do: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%s: read body: %w", op, err)
	}

	return Result{
		OK:       resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:   resp.StatusCode,
		Body:     string(body),
		FinalURL: finalURL(resp, url),
	}, nil
}

// Resolve разрешает цепочку редиректов HEAD-запросом и возвращает
// конечный адрес. При любом сбое возвращает исходный url и ошибку —
// вызывающий код решает, деградировать или нет.
func (c *Client) Resolve(ctx context.Context, url string, timeout time.Duration) (string, error) {
	const op = "fetcher/Resolve"

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return url, fmt.Errorf("%s: new request: %w", op, err)
	}
	spoofHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return url, fmt.Errorf("%s: do: %w", op, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return finalURL(resp, url), nil
}

func spoofHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
}

func finalURL(resp *http.Response, fallback string) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return fallback
}
