// feed — парсер RSS/Atom поверх тэгового извлечения строк.
//
// Это осознанное упрощение: полноценная XML-модель здесь не нужна,
// а выдача поисковых лент достаточно регулярна для блочного матчинга.
// Пакет изолирован за интерфейсом service.FeedParser, так что замена
// на настоящий XML-парсер не трогает вызывающий код.
package feed

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// snippetLimit — потолок длины тизера, сохраняемого в RawItem.
const snippetLimit = 320

var (
	// Блочные матчеры: ограниченно-жадный захват повторяющихся элементов.
	reItemBlock  = regexp.MustCompile(`(?is)<item\b.*?</item>`)
	reEntryBlock = regexp.MustCompile(`(?is)<entry\b.*?</entry>`)

	// Atom кладёт ссылку в атрибут href, а не в текст тэга.
	reAtomHref = regexp.MustCompile(`(?is)<link[^>]*href=["']([^"']+)["']`)

	reAnyTag     = regexp.MustCompile(`<[^>]*>`)
	reWhitespace = regexp.MustCompile(`\s+`)

	// Принимаемые тэги даты, в порядке предпочтения.
	dateTags = []string{"pubDate", "published", "updated", "dc:date"}
	// Принимаемые тэги описания, в порядке предпочтения.
	descTags = []string{"description", "summary"}

	tagRes = map[string]*regexp.Regexp{}
)

func init() {
	for _, tag := range []string{"title", "link", "source", "pubDate", "published", "updated", "dc:date", "description", "summary"} {
		tagRes[tag] = regexp.MustCompile(`(?is)<` + tag + `[^>]*>(.*?)</` + tag + `>`)
	}
}

// Parser извлекает структурированные элементы из текста ленты.
// Реализация stateless и безопасна для конкурентного использования.
type Parser struct{}

// NewParser создаёт парсер лент.
func NewParser() *Parser {
	return &Parser{}
}

// Parse извлекает элементы ленты. Сначала выполняется RSS-проход (<item>);
// Atom (<entry>) пробуется только если RSS-проход не дал ни одного элемента.
// Автодетект по пустоте результата, а не по заявленному namespace:
// битый RSS не может «протечь» в Atom-ветку и породить дубликаты.
func (p *Parser) Parse(xmlText string, src models.FeedSource) []models.RawItem {
	items := p.parseBlocks(reItemBlock.FindAllString(xmlText, -1), src, false)
	if len(items) > 0 {
		return items
	}

	return p.parseBlocks(reEntryBlock.FindAllString(xmlText, -1), src, true)
}

// parseBlocks превращает блоки <item>/<entry> в RawItem.
// Элемент без заголовка и без ссылки отбрасывается.
func (p *Parser) parseBlocks(blocks []string, src models.FeedSource, atom bool) []models.RawItem {
	var out []models.RawItem

	for _, block := range blocks {
		title := pickTag(block, "title")
		link := pickTag(block, "link")
		if atom && link == "" {
			if m := reAtomHref.FindStringSubmatch(block); len(m) >= 2 {
				link = strings.TrimSpace(m[1])
			}
		}

		if title == "" && link == "" {
			continue
		}

		var pub time.Time
		for _, tag := range dateTags {
			if raw := pickTag(block, tag); raw != "" {
				if t, err := parsePubDate(raw); err == nil {
					pub = t
					break
				}
			}
		}

		var snippet string
		for _, tag := range descTags {
			if s := pickTag(block, tag); s != "" {
				snippet = s
				break
			}
		}
		if r := []rune(snippet); len(r) > snippetLimit {
			snippet = string(r[:snippetLimit])
		}

		out = append(out, models.RawItem{
			ID:          models.StableID(src.Category, link, title, pub),
			Category:    src.Category,
			Title:       title,
			URL:         link,
			PublishedAt: pub,
			Source:      pickTag(block, "source"),
			Snippet:     snippet,
		})
	}

	return out
}

// pickTag возвращает очищенное содержимое первого вхождения тэга.
func pickTag(block, tag string) string {
	re, ok := tagRes[tag]
	if !ok {
		return ""
	}

	m := re.FindStringSubmatch(block)
	if len(m) < 2 {
		return ""
	}

	return stripMarkup(m[1])
}

// stripMarkup убирает CDATA-маркеры и HTML-тэги, декодирует entity
// и схлопывает пробелы.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	s = reAnyTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = reWhitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// parsePubDate пробует набор популярных форматов и возвращает UTC-время.
func parsePubDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	layouts := []string{
		time.RFC1123Z,                   // Mon, 02 Jan 2006 15:04:05 -0700
		time.RFC1123,                    // Mon, 02 Jan 2006 15:04:05 MST
		"Mon, 02 Jan 06 15:04:05 -0700", // 2-значный год
		"Mon, 02 Jan 06 15:04:05 MST",   // 2-значный год
		time.RFC822Z,                    // 02 Jan 06 15:04 -0700
		time.RFC822,                     // 02 Jan 06 15:04 MST
		time.RFC3339,                    // 2006-01-02T15:04:05Z07:00 (Atom)
		"2006-01-02 15:04:05",           // нестандарт без зоны
	}

	var lastErr error
	for _, l := range layouts {
		if t, err := time.Parse(l, value); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, lastErr
}
