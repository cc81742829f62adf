package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/pribylovaa/estate-digest/internal/models"
	"github.com/stretchr/testify/require"
)

var testSource = models.FeedSource{
	Name:     "market",
	Query:    "rynek nieruchomości",
	Category: models.CategoryMarket,
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Search results</title>
<item>
  <title><![CDATA[Ceny mieszkań <b>rosną</b>]]></title>
  <link>https://example.org/a?utm=1</link>
  <pubDate>Sat, 30 Aug 2026 10:15:00 +0200</pubDate>
  <description><![CDATA[Krótki <i>tizer</i> o rynku.]]></description>
  <source url="https://pub.example">Przykładowy Dziennik</source>
</item>
<item>
  <title>Bez daty i opisu</title>
  <link>https://example.org/b</link>
</item>
<item>
  <description>ни заголовка, ни ссылки</description>
</item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry>
  <title>Atom wpis</title>
  <link rel="alternate" href="https://example.org/atom-1"/>
  <published>2026-08-29T08:00:00Z</published>
  <summary>Zajawka atomowa</summary>
</entry>
</feed>`

// TestParse_RSS_Basics — заголовок/ссылка/дата/тизер/источник извлекаются,
// CDATA и HTML-тэги вычищены.
func TestParse_RSS_Basics(t *testing.T) {
	t.Parallel()

	items := NewParser().Parse(sampleRSS, testSource)
	require.Len(t, items, 2)

	first := items[0]
	require.Equal(t, "Ceny mieszkań rosną", first.Title)
	require.Equal(t, "https://example.org/a?utm=1", first.URL)
	require.Equal(t, models.CategoryMarket, first.Category)
	require.Equal(t, "Przykładowy Dziennik", first.Source)
	require.Equal(t, "Krótki tizer o rynku.", first.Snippet)

	wantPub := time.Date(2026, 8, 30, 8, 15, 0, 0, time.UTC)
	require.True(t, first.PublishedAt.Equal(wantPub))

	second := items[1]
	require.Equal(t, "Bez daty i opisu", second.Title)
	require.True(t, second.PublishedAt.IsZero())
	require.Empty(t, second.Snippet)
}

// TestParse_DiscardsItemWithoutTitleAndURL — элемент без заголовка и ссылки
// отбрасывается целиком.
func TestParse_DiscardsItemWithoutTitleAndURL(t *testing.T) {
	t.Parallel()

	items := NewParser().Parse(sampleRSS, testSource)
	for _, it := range items {
		require.False(t, it.Title == "" && it.URL == "")
	}
}

// TestParse_StableIDs — одинаковый текст ленты даёт одинаковые ID.
func TestParse_StableIDs(t *testing.T) {
	t.Parallel()

	p := NewParser()
	a := p.Parse(sampleRSS, testSource)
	b := p.Parse(sampleRSS, testSource)

	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].ID, b[i].ID)
		require.True(t, strings.HasPrefix(a[i].ID, "Market-"))
	}
}

// TestParse_AtomFallback_OnlyWhenRSSYieldsNothing — Atom-проход выполняется
// только при пустом результате RSS-прохода.
func TestParse_AtomFallback_OnlyWhenRSSYieldsNothing(t *testing.T) {
	t.Parallel()

	items := NewParser().Parse(sampleAtom, testSource)
	require.Len(t, items, 1)
	require.Equal(t, "Atom wpis", items[0].Title)
	require.Equal(t, "https://example.org/atom-1", items[0].URL)
	require.Equal(t, "Zajawka atomowa", items[0].Snippet)
	require.True(t, items[0].PublishedAt.Equal(time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)))

	// Лента с <item> не попадает в Atom-ветку, даже если содержит <entry>.
	mixed := sampleRSS + sampleAtom
	itemsMixed := NewParser().Parse(mixed, testSource)
	for _, it := range itemsMixed {
		require.NotEqual(t, "Atom wpis", it.Title)
	}
}

// TestParse_SnippetCapped — тизер обрезается до лимита по рунам.
func TestParse_SnippetCapped(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ł", 500)
	xml := `<rss><channel><item>
	  <title>T</title>
	  <link>https://example.org/long</link>
	  <description>` + long + `</description>
	</item></channel></rss>`

	items := NewParser().Parse(xml, testSource)
	require.Len(t, items, 1)
	require.Equal(t, snippetLimit, len([]rune(items[0].Snippet)))
}

// TestParse_GarbageInput — мусор на входе даёт пустой результат, не панику.
func TestParse_GarbageInput(t *testing.T) {
	t.Parallel()

	require.Empty(t, NewParser().Parse("", testSource))
	require.Empty(t, NewParser().Parse("<html><body>not a feed</body></html>", testSource))
	require.Empty(t, NewParser().Parse("<item><title></title></item>", testSource))
}

// TestParsePubDate_Layouts — поддерживаются основные форматы дат лент.
func TestParsePubDate_Layouts(t *testing.T) {
	t.Parallel()

	cases := []string{
		"Mon, 02 Jan 2006 15:04:05 -0700",
		"Mon, 02 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05Z",
	}
	for _, c := range cases {
		got, err := parsePubDate(c)
		require.NoError(t, err, c)
		require.False(t, got.IsZero())
	}

	_, err := parsePubDate("не дата")
	require.Error(t, err)
}
