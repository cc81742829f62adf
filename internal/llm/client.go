// llm — клиент внешнего генератора (OpenAI-совместимый chat-completions API).
//
// Оба вызова (резюме и топ-подборка) жёстко ограничены:
//   - вход усечён до байтового потолка;
//   - выход связан декларированной JSON-схемой, ответ обязан парситься.
//
// Любой транспортный или парсинговый сбой возвращается ошибкой —
// детерминированный фолбэк живёт на стороне вызывающего сервиса.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pribylovaa/estate-digest/internal/config"
	"github.com/pribylovaa/estate-digest/internal/models"
)

// Client — генератор резюме и топ-подборки.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxPayload int
	http       *http.Client
}

// New создаёт клиент из конфигурации. Ключ должен быть непустым:
// решение «работать без генератора» принимает сборка приложения.
func New(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxPayload: cfg.MaxPayloadBytes,
		http:       &http.Client{Timeout: timeout},
	}, nil
}

const summariesPrompt = `You are a real-estate market analyst advising an agent.

You receive a list of news items (headline + short teaser).
For EVERY item return:
- summary: 2-3 sentences, concretely "what changed / what was announced".
- whyItMatters: 1 sentence "what this means for the agent" (sales/negotiation/credit/risk).

Return JSON matching the schema. No markdown.`

const topPicksPrompt = `Pick the TOP 3 news items "for today" for a real-estate agent.
Criterion: impact on sales/negotiations/mortgages/demand/transaction risk.

Return:
- title: short title (may be slightly trimmed)
- why: 1 sentence "what this means for the agent"
- url: source link
- category: Credit/Market/Legal

Return JSON matching the schema. No markdown.`

// Ограничения на поля тройки.
const (
	topTitleLimit = 180
	topWhyLimit   = 220
)

type summaryRow struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Source   string `json:"source"`
}

type topRow struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// Summaries просит генератор сделать резюме для каждого элемента батча.
// Возвращает map id -> Summary; элементы, которые генератор пропустил,
// в map отсутствуют.
func (c *Client) Summaries(ctx context.Context, items []models.RawItem) (map[string]models.Summary, error) {
	const op = "llm/Summaries"

	rows := make([]summaryRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, summaryRow{
			ID:       it.ID,
			Category: string(it.Category),
			Title:    it.Title,
			Snippet:  it.Snippet,
			Source:   it.Source,
		})
	}

	payload, err := boundedJSON(rows, c.maxPayload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := c.call(ctx, summariesPrompt, payload, summariesSchema())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var parsed struct {
		Items []struct {
			ID           string `json:"id"`
			Summary      string `json:"summary"`
			WhyItMatters string `json:"whyItMatters"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make(map[string]models.Summary, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.ID == "" || it.Summary == "" || it.WhyItMatters == "" {
			continue
		}
		out[it.ID] = models.Summary{Summary: it.Summary, WhyItMatters: it.WhyItMatters}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", op)
	}

	return out, nil
}

// TopPicks просит генератор выбрать тройку из уже отсортированных и
// просуммированных элементов. Категории вне закрытого набора приводятся
// к Market, поля обрезаются по лимитам.
func (c *Client) TopPicks(ctx context.Context, items []models.NewsItem) ([]models.TopEntry, error) {
	const op = "llm/TopPicks"

	if len(items) == 0 {
		return nil, nil
	}

	rows := make([]topRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, topRow{
			Title:    it.Title,
			Category: string(it.Category),
			Summary:  it.Summary,
			URL:      it.URL,
			Source:   it.Source,
		})
	}

	payload, err := boundedJSON(rows, c.maxPayload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := c.call(ctx, topPicksPrompt, payload, topPicksSchema())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var parsed struct {
		Top3 []struct {
			Title    string `json:"title"`
			Why      string `json:"why"`
			URL      string `json:"url"`
			Category string `json:"category"`
		} `json:"top3"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	if len(parsed.Top3) == 0 {
		return nil, fmt.Errorf("%s: empty result", op)
	}

	out := make([]models.TopEntry, 0, 3)
	for _, row := range parsed.Top3 {
		if len(out) == 3 {
			break
		}
		out = append(out, models.TopEntry{
			Title:    truncateRunes(row.Title, topTitleLimit),
			Why:      truncateRunes(row.Why, topWhyLimit),
			URL:      row.URL,
			Category: models.NormalizeCategory(row.Category),
		})
	}

	return out, nil
}

// boundedJSON сериализует rows, отбрасывая хвост до вписывания в потолок.
// Срезать готовую JSON-строку нельзя — получится непарсящийся вход.
func boundedJSON[T any](rows []T, maxBytes int) (string, error) {
	for n := len(rows); n > 0; n-- {
		b, err := json.Marshal(rows[:n])
		if err != nil {
			return "", err
		}
		if len(b) <= maxBytes {
			return string(b), nil
		}
	}

	return "", fmt.Errorf("payload does not fit into %d bytes", maxBytes)
}

// chat-completions запрос со связанным форматом ответа.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat any           `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) call(ctx context.Context, prompt, payload string, schema any) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: payload},
		},
		ResponseFormat: schema,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}

	return cr.Choices[0].Message.Content, nil
}

// summariesSchema — декларированная схема ответа для резюме.
func summariesSchema() any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "news_summaries",
			"strict": true,
			"schema": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"items"},
				"properties": map[string]any{
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []string{"id", "summary", "whyItMatters"},
							"properties": map[string]any{
								"id":           map[string]any{"type": "string"},
								"summary":      map[string]any{"type": "string"},
								"whyItMatters": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	}
}

// topPicksSchema — декларированная схема ответа для тройки: ровно 3 элемента.
func topPicksSchema() any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "top3_today",
			"strict": true,
			"schema": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"top3"},
				"properties": map[string]any{
					"top3": map[string]any{
						"type":     "array",
						"minItems": 3,
						"maxItems": 3,
						"items": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []string{"title", "why", "url", "category"},
							"properties": map[string]any{
								"title":    map[string]any{"type": "string"},
								"why":      map[string]any{"type": "string"},
								"url":      map[string]any{"type": "string"},
								"category": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	}
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
