package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// Memory — кэш в памяти процесса. Конкурентные чтения не блокируют
// друг друга (RWMutex); часы инжектируются ради детерминированных тестов.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemory создаёт кэш; nil-часы откатываются к time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}

	return &Memory{
		entries: make(map[string]Entry),
		now:     now,
	}
}

// Get возвращает запись любого возраста и признак её наличия.
func (m *Memory) Get(_ context.Context, scope string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[Key(scope)]
	return e, ok, nil
}

// Put пишет новую запись с текущим таймстемпом, замещая старую целиком.
func (m *Memory) Put(_ context.Context, scope string, payload models.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[Key(scope)] = Entry{Timestamp: m.now(), Payload: payload}
	return nil
}
