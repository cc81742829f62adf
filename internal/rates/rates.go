// rates — best-effort срез базовых процентных ставок с одной страницы.
//
// Извлечение якорное: рядом с текстовой меткой ищется десятичное значение,
// затем ISO-дата в ограниченном окне символов. Хрупкость к смене вёрстки —
// осознанный размен в пользу простоты; сбой здесь никогда не фатален
// для дайджеста.
package rates

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pribylovaa/estate-digest/internal/config"
	"github.com/pribylovaa/estate-digest/internal/fetcher"
	"github.com/pribylovaa/estate-digest/internal/models"
	"github.com/pribylovaa/estate-digest/pkg/log"
)

// anchorWindow — максимум символов между меткой, значением и датой.
const anchorWindow = 140

var (
	reAnyTag     = regexp.MustCompile(`<[^>]*>`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Fetcher загружает и разбирает страницу ставок.
type Fetcher struct {
	client  *fetcher.Client
	url     string
	timeout time.Duration

	reference *regexp.Regexp
	lombard   *regexp.Regexp
	deposit   *regexp.Regexp
}

// New создаёт Fetcher; якорные регулярки компилируются один раз.
func New(client *fetcher.Client, cfg config.RatesConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	return &Fetcher{
		client:    client,
		url:       cfg.URL,
		timeout:   timeout,
		reference: anchorRe(cfg.ReferenceLabel),
		lombard:   anchorRe(cfg.LombardLabel),
		deposit:   anchorRe(cfg.DepositLabel),
	}
}

// Snapshot возвращает срез ставок или nil при сбое загрузки.
// Частичных сбоев не бывает: все поля извлекаются из одного и того же
// очищенного текста, отсутствующие остаются nil.
func (f *Fetcher) Snapshot(ctx context.Context) (*models.RateSnapshot, error) {
	const op = "rates/Snapshot"

	res, err := f.client.Fetch(ctx, f.url, f.timeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !res.OK {
		return nil, fmt.Errorf("%s: status=%d", op, res.Status)
	}

	clean := stripMarkup(res.Body)

	snap := &models.RateSnapshot{
		Reference: grab(f.reference, clean),
		Lombard:   grab(f.lombard, clean),
		Deposit:   grab(f.deposit, clean),
	}

	log.From(ctx).Debug("rates_extracted",
		slog.String("op", op),
		slog.Bool("reference", snap.Reference != nil),
		slog.Bool("lombard", snap.Lombard != nil),
		slog.Bool("deposit", snap.Deposit != nil),
	)

	return snap, nil
}

// anchorRe строит якорную регулярку для метки: значение в пределах окна
// после метки, дата решения — в пределах окна после значения.
// Десятичный разделитель — запятая или точка.
func anchorRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + regexp.QuoteMeta(label) +
		`.{0,` + fmt.Sprint(anchorWindow) + `}?([0-9]+[.,][0-9]{2})` +
		`.{0,` + fmt.Sprint(anchorWindow) + `}?(20\d{2}-\d{2}-\d{2})`)
}

func grab(re *regexp.Regexp, clean string) *models.RateValue {
	m := re.FindStringSubmatch(clean)
	if len(m) < 3 {
		return nil
	}

	return &models.RateValue{Value: m[1], Date: m[2]}
}

func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	s = reAnyTag.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
