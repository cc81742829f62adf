package service

import (
	"strings"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// dedupe схлопывает элементы с эквивалентными нормализованными заголовками.
//
// Ключ — заголовок после trim и lower: при синдикации и трекинговых
// параметрах URL различаются, заголовок — самый стабильный межисточниковый
// идентификатор. Первое вхождение побеждает, порядок сохраняется,
// операция идемпотентна. Элементы с пустым заголовком дедупу не поддаются
// и отбрасываются.
func dedupe(items []models.RawItem) []models.RawItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.RawItem, 0, len(items))

	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Title))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, it)
	}

	return out
}
