package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/session"
	apierrors "github.com/pribylovaa/forum-web-client/internal/web/errors"
	logctx "github.com/pribylovaa/forum-web-client/pkg/log"
	"github.com/pribylovaa/forum-web-client/pkg/redact"
)

// Login аутентифицирует пользователя по email/паролю.
// Успех: пара токенов уходит в Set-Cookie, в теле — статус сессии.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Role     models.Role `json:"role"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
	}
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelDebug, "login_attempt",
		slog.String("email", redact.Email(in.Email)),
		slog.String("role", string(in.Role)),
	)

	client := h.client(w, r)
	if err := client.Login(r.Context(), in.Role, in.Email, in.Password); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session.Status(client.Store()))
}

// Logout завершает сессию: отзывает refresh на backend'е и удаляет cookie.
// Локальная сессия завершается даже при недоступном backend'е, поэтому
// ошибка сетевого вызова не отменяет 200-ответ со статусом.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	client := h.client(w, r)

	_ = client.Logout(r.Context())

	writeJSON(w, http.StatusOK, models.Unauthenticated())
}

// Status возвращает производный статус сессии. Просроченная пара
// вычищается по пути (Set-Cookie с удалением).
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session.Status(h.client(w, r).Store()))
}
