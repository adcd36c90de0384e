package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/forum-web-client/internal/forumapi"
	"github.com/pribylovaa/forum-web-client/internal/oauth"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
)

// Handlers агрегирует конфигурацию, из которой на каждый запрос
// собирается request-scoped клиент backend-API: хранилище токенов
// живёт в cookies конкретной пары (w, r).
type Handlers struct {
	API   forumapi.Config
	OAuth oauth.Config
	TTL   tokens.TTL
}

func New(api forumapi.Config, social oauth.Config, ttl tokens.TTL) *Handlers {
	return &Handlers{API: api, OAuth: social, TTL: ttl}
}

// client собирает клиент backend-API поверх cookie-хранилища запроса.
func (h *Handlers) client(w http.ResponseWriter, r *http.Request) *forumapi.Client {
	return forumapi.New(h.API, tokens.NewCookieStore(w, r, h.TTL))
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка парсинга входа -> 400.
func errInvalidArgument() error {
	return fmt.Errorf("decode request: %w", forumapi.ErrInvalidArgument)
}
