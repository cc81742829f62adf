// cache — последний удачный дайджест по каждому scope.
//
// Запись живёт дольше своего TTL: просроченные данные — последняя линия
// обороны перед явной ошибкой «данных нет». Свежесть решает вызывающий
// код через IsFresh, вычищение просроченного — логическое, не физическое.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// Entry — одна запись кэша. После записи не мутируется:
// обновление всегда кладёт новый Entry.
type Entry struct {
	// Timestamp — момент записи.
	Timestamp time.Time
	// Payload — собранный дайджест.
	Payload models.Digest
}

// Cache — минимальный контракт хранилища дайджестов.
// Get обязан возвращать запись независимо от её возраста.
type Cache interface {
	Get(ctx context.Context, scope string) (Entry, bool, error)
	Put(ctx context.Context, scope string, payload models.Digest) error
}

// Key нормализует scope в ключ кэша: trim + lower, пусто -> "__all__".
func Key(scope string) string {
	k := strings.ToLower(strings.TrimSpace(scope))
	if k == "" {
		return "__all__"
	}
	return k
}

// IsFresh — запись моложе TTL относительно now.
func IsFresh(e Entry, ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Timestamp) < ttl
}
