// models содержит доменные сущности digest-сервиса.
// Эти типы используются слоями бизнес-логики, кэша и транспорта.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Category — закрытый набор тематик дайджеста.
type Category string

const (
	// CategoryCredit — ипотека, ставки, банковские продукты.
	CategoryCredit Category = "Credit"
	// CategoryMarket — цены, спрос, предложение на рынке недвижимости.
	CategoryMarket Category = "Market"
	// CategoryLegal — законодательство, регуляторика, судебная практика.
	CategoryLegal Category = "Legal"
)

// NormalizeCategory приводит произвольную строку к допустимой категории.
// Всё, что не входит в закрытый набор, трактуется как CategoryMarket:
// внешний генератор иногда возвращает вольные значения, отбрасывать
// запись из-за этого нельзя.
func NormalizeCategory(s string) Category {
	switch Category(s) {
	case CategoryCredit, CategoryMarket, CategoryLegal:
		return Category(s)
	default:
		return CategoryMarket
	}
}

// FeedSource — статическое описание источника: откуда и что тянуть.
// Набор источников фиксирован на время жизни процесса.
type FeedSource struct {
	// Name — человекочитаемое имя источника.
	Name string
	// Query — поисковый запрос к RSS-выдаче.
	Query string
	// Category — категория, которой помечаются все элементы источника.
	Category Category
}

// RawItem — элемент ленты сразу после парсинга, до обогащения.
//
// Особенности:
//   - ID детерминирован (см. StableID): одна и та же статья получает
//     один и тот же идентификатор между запусками;
//   - PublishedAt — UTC; нулевое значение означает «дата неизвестна».
type RawItem struct {
	// ID — стабильный идентификатор элемента.
	ID string
	// Category — категория источника.
	Category Category
	// Title — заголовок.
	Title string
	// URL — ссылка на материал (до разрешения редиректов).
	URL string
	// PublishedAt — время публикации у источника.
	PublishedAt time.Time
	// Source — имя издателя из ленты, если лента его отдала.
	Source string
	// Snippet — тизер/описание, обрезанный при парсинге.
	Snippet string
}

// EnrichedItem — RawItem после разрешения редиректов и скрейпа метаданных.
// Snippet дальше по конвейеру не нужен и сюда не переносится.
type EnrichedItem struct {
	ID          string
	Category    Category
	Title       string
	// URL — финальная ссылка после редиректов; при сбое — исходная.
	URL         string
	PublishedAt time.Time
	// Source — имя издателя; может быть дополнено og:site_name страницы,
	// если лента имени не дала.
	Source string
	// Image — og:image/twitter:image страницы; пусто при сбое обогащения.
	Image string
}

// NewsItem — единица выдачи клиенту: обогащённый элемент с резюме.
type NewsItem struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt,omitzero"`
	Source      string    `json:"source,omitempty"`
	Image       string    `json:"image,omitempty"`
	// Summary — 2–3 предложения «что случилось».
	Summary string `json:"summary"`
	// WhyItMatters — одно предложение «что это значит для агента».
	WhyItMatters string `json:"whyItMatters"`
}

// Summary — пара полей резюме для одного элемента.
type Summary struct {
	Summary      string
	WhyItMatters string
}

// TopEntry — элемент курируемой тройки. Инвариант: len(top3) <= 3.
type TopEntry struct {
	Title    string   `json:"title"`
	Why      string   `json:"why"`
	URL      string   `json:"url"`
	Category Category `json:"category"`
}

// RateValue — одно извлечённое значение ставки с датой решения.
type RateValue struct {
	Value string `json:"value"`
	Date  string `json:"date"`
}

// RateSnapshot — срез базовых ставок. Любое поле может отсутствовать:
// извлечение best-effort из одного и того же очищенного текста страницы.
type RateSnapshot struct {
	Reference *RateValue `json:"reference"`
	Lombard   *RateValue `json:"lombard"`
	Deposit   *RateValue `json:"deposit"`
}

// Digest — собранный ответ для клиента; он же — полезная нагрузка кэша.
// Записанный в кэш Digest не мутируется: обновление пишет новый экземпляр.
type Digest struct {
	OK          bool          `json:"ok"`
	GeneratedAt time.Time     `json:"generatedAt"`
	// Scope — нормализованная локальность запроса; пустая строка = «все».
	Scope string        `json:"scope"`
	Rates *RateSnapshot `json:"rates"`
	Top3  []TopEntry    `json:"top3"`
	Items []NewsItem    `json:"items"`
	// Stale выставляется при отдаче просроченного кэша после сбоя обновления.
	Stale bool `json:"stale,omitempty"`
}

// StableID строит детерминированный идентификатор элемента:
// category + "-" + первые 20 hex-символов sha256 от
// "category|url|title|publishedAt". Идентификатор не зависит от порядка
// загрузки лент, что даёт идемпотентность между запусками.
func StableID(category Category, url, title string, publishedAt time.Time) string {
	pub := ""
	if !publishedAt.IsZero() {
		pub = publishedAt.UTC().Format(time.RFC3339)
	}

	base := string(category) + "|" + url + "|" + title + "|" + pub
	sum := sha256.Sum256([]byte(base))

	return string(category) + "-" + hex.EncodeToString(sum[:])[:20]
}
