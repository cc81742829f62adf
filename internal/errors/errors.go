// errors стандартизирует ответы об ошибках HTTP-слоя digest-сервиса.
// На вход он принимает ошибку бизнес-логики, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Контракт с клиентом: ok=false и машиночитаемое error; details
// заполняется только для ожидаемых, безопасных для показа причин.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/estate-digest/internal/service"
)

// ErrorResponse — единый формат ошибки для фронта.
// RequestID прокидывается из X-Request-Id, если он есть (для трассировки).
type ErrorResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку бизнес-логики в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal, чтобы
//     не замаскировать баг ответом "200 OK";
//   - service.ErrNoData — 503: апстрим пуст и кэш холодный;
//   - таймаут запроса — 504;
//   - прочее — 500 без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal error",
		}
	case errors.Is(err, service.ErrNoData):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "no data available",
			Details: "upstream feeds returned nothing and the cache is cold",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: "deadline exceeded",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal error",
		}
	}
}

// WriteError — хелпер для HTTP-хендлеров: пишет корректный статус/тело,
// добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
