// sources — статический реестр источников дайджеста.
// Набор фиксирован: по одной поисковой RSS-ленте на категорию.
package sources

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/estate-digest/internal/config"
	"github.com/pribylovaa/estate-digest/internal/models"
)

// Registry строит запросы к лентам из конфигурации.
type Registry struct {
	cfg config.FeedsConfig
}

// New создаёт реестр поверх feeds-конфигурации.
func New(cfg config.FeedsConfig) *Registry {
	return &Registry{cfg: cfg}
}

// For возвращает три источника (Credit/Market/Legal) с локальностью scope,
// подставленной в поисковый запрос. Пустой scope даёт общенациональную выдачу.
func (r *Registry) For(scope string) []models.FeedSource {
	return []models.FeedSource{
		{Name: "credit", Query: spliceScope(r.cfg.CreditQuery, scope), Category: models.CategoryCredit},
		{Name: "market", Query: spliceScope(r.cfg.MarketQuery, scope), Category: models.CategoryMarket},
		{Name: "legal", Query: spliceScope(r.cfg.LegalQuery, scope), Category: models.CategoryLegal},
	}
}

// URL собирает полный адрес поисковой RSS-выдачи для источника.
func (r *Registry) URL(src models.FeedSource) string {
	q := url.Values{}
	q.Set("q", src.Query)
	q.Set("hl", r.cfg.Lang)
	q.Set("gl", r.cfg.Country)
	q.Set("ceid", fmt.Sprintf("%s:%s", r.cfg.Country, r.cfg.Lang))

	return r.cfg.Endpoint + "?" + q.Encode()
}

// spliceScope вставляет локальность в шаблон запроса.
// Шаблон содержит один %s; пустой scope схлопывает лишние пробелы.
func spliceScope(template, scope string) string {
	q := fmt.Sprintf(template, scope)
	return strings.Join(strings.Fields(q), " ")
}
