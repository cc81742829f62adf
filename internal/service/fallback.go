package service

import (
	"strings"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// fallbackSnippetLimit — потолок длины фолбэчного резюме.
const fallbackSnippetLimit = 180

// fallbackGenericSummary — заглушка при полностью пустом тизере.
const fallbackGenericSummary = "Short update from the real-estate market."

// fallbackWhy — фиксированная таблица «что это значит» по категориям.
var fallbackWhy = map[models.Category]string{
	models.CategoryCredit: "Affects buyer borrowing capacity and deal velocity.",
	models.CategoryMarket: "Helps set pricing and talking points with clients.",
	models.CategoryLegal:  "May change formal requirements and transaction risk.",
}

// fallbackSummary — детерминированное резюме без сетевых вызовов:
// гарантированный пол качества при сбое генератора. Тизер обрезается
// до лимита (с многоточием), пустой тизер заменяется заглушкой.
func fallbackSummary(raw models.RawItem) models.Summary {
	snippet := strings.TrimSpace(raw.Snippet)

	var base string
	switch r := []rune(snippet); {
	case len(r) == 0:
		base = fallbackGenericSummary
	case len(r) > fallbackSnippetLimit:
		base = string(r[:fallbackSnippetLimit]) + "…"
	default:
		base = snippet
	}

	why, ok := fallbackWhy[raw.Category]
	if !ok {
		why = fallbackWhy[models.CategoryMarket]
	}

	return models.Summary{Summary: base, WhyItMatters: why}
}

// topFromRecency — фолбэк тройки: первые три элемента уже отсортированного
// по свежести списка.
func topFromRecency(items []models.NewsItem) []models.TopEntry {
	n := len(items)
	if n > 3 {
		n = 3
	}

	out := make([]models.TopEntry, 0, n)
	for _, it := range items[:n] {
		out = append(out, models.TopEntry{
			Title:    it.Title,
			Why:      it.WhyItMatters,
			URL:      it.URL,
			Category: it.Category,
		})
	}

	return out
}
