// errors стандартизирует ответы об ошибках HTTP-слоя веб-клиента.
// На вход он принимает ошибку (sentinel-ошибки пакетов forumapi,
// transport и oauth), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Отдельный случай — истёкшая сессия: помимо 401 фронт получает
// каноничный адрес страницы входа в поле redirect_to.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/forum-web-client/internal/forumapi"
	"github.com/pribylovaa/forum-web-client/internal/forumapi/transport"
	"github.com/pribylovaa/forum-web-client/internal/oauth"
)

// LoginPath — каноничный адрес страницы входа; единственное место,
// где он задан.
const LoginPath = "/login/"

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
// RedirectTo — адрес, куда фронту следует увести пользователя
// (заполняется только для истёкшей сессии).
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal, чтобы не
//     послать "200 OK" с телом ошибки и не маскировать баг;
//   - известные sentinel-ошибки маппятся по таблице ниже;
//   - прочее — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := base(err)

	resp := ErrorResponse{Error: APIError{Code: code, Message: msg}}
	if code == "session_expired" {
		resp.Error.RedirectTo = LoginPath
	}

	return status, resp
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — таблица маппинга sentinel-ошибок в HTTP/FE-код/сообщение:
//   - ErrSessionExpired -> 401 (плюс redirect_to на страницу входа)
//   - ErrInvalidCredentials / ErrUnauthenticated / ErrNoProvisionalSession -> 401
//   - ErrInvalidArgument / ErrMalformedCallback -> 400
//   - ErrAlreadyProcessed -> 409 (одноразовый callback)
//   - ErrForbidden -> 403
//   - ErrNotFound -> 404
//   - ErrUnavailable -> 502 (backend недоступен/5xx)
//   - context.DeadlineExceeded -> 504
//   - прочее -> 500/internal
func base(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, transport.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired", "session expired"
	case errors.Is(err, forumapi.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	case errors.Is(err, oauth.ErrNoProvisionalSession):
		return http.StatusUnauthorized, "no_provisional_session", "no provisional session"
	case errors.Is(err, forumapi.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case errors.Is(err, oauth.ErrMalformedCallback):
		return http.StatusBadRequest, "malformed_callback", "malformed oauth callback"
	case errors.Is(err, forumapi.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, oauth.ErrAlreadyProcessed):
		return http.StatusConflict, "already_processed", "callback already processed"
	case errors.Is(err, forumapi.ErrForbidden):
		return http.StatusForbidden, "forbidden", "forbidden"
	case errors.Is(err, forumapi.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, forumapi.ErrUnavailable):
		return http.StatusBadGateway, "unavailable", "backend unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
