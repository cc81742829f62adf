package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/estate-digest/internal/models"
)

// DigestService — контракт бизнес-логики, нужный HTTP-слою.
type DigestService interface {
	Digest(ctx context.Context, scope string) (models.Digest, error)
}

// Handlers агрегирует зависимости HTTP-обработчиков.
type Handlers struct {
	Service DigestService
}

func New(svc DigestService) *Handlers {
	return &Handlers{Service: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
