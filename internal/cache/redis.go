package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// physicalTTL — физический срок хранения в Redis. Намного больше
// логического TTL: просроченные записи нужны для stale-отдачи,
// но бесконечно копить ключи незачем.
const physicalTTL = 24 * time.Hour

// Redis — кэш дайджестов в Redis; полезен при нескольких репликах
// сервиса, когда «последний удачный» должен быть общим.
type Redis struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedis создаёт клиент из URL (например, redis://:pass@host:6379/0).
// Пустой prefix откатывается к "digest:". Fail-fast ping на старте.
func NewRedis(redisURL, prefix string, now func() time.Time) (*Redis, error) {
	if prefix == "" {
		prefix = "digest:"
	}
	if now == nil {
		now = time.Now
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &Redis{rdb: rdb, prefix: prefix, now: now}, nil
}

func (r *Redis) key(scope string) string { return r.prefix + Key(scope) }

// Храним как Redis Hash с полями: ts (unix), payload (JSON).
func (r *Redis) Get(ctx context.Context, scope string) (Entry, bool, error) {
	m, err := r.rdb.HGetAll(ctx, r.key(scope)).Result()
	if err != nil {
		return Entry{}, false, err
	}
	if len(m) == 0 {
		return Entry{}, false, nil
	}

	tsUnix, err := strconv.ParseInt(m["ts"], 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: bad ts field: %w", err)
	}

	var payload models.Digest
	if err := json.Unmarshal([]byte(m["payload"]), &payload); err != nil {
		return Entry{}, false, fmt.Errorf("cache: decode payload: %w", err)
	}

	return Entry{Timestamp: time.Unix(tsUnix, 0).UTC(), Payload: payload}, true, nil
}

func (r *Redis) Put(ctx context.Context, scope string, payload models.Digest) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cache: encode payload: %w", err)
	}

	kv := map[string]string{
		"ts":      strconv.FormatInt(r.now().Unix(), 10),
		"payload": string(b),
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key(scope), kv)
	pipe.Expire(ctx, r.key(scope), physicalTTL)

	_, err = pipe.Exec(ctx)
	return err
}

// Close закрывает клиент Redis.
func (r *Redis) Close() error { return r.rdb.Close() }
