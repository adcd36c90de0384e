package forumapi

import "errors"

var (
	// ErrInvalidCredentials — пара email/пароль отклонена backend'ом
	// (ответ 401 на auth/login/). Веб-слой: HTTP 401 без редиректа.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated — запрос отклонён как неаутентифицированный
	// уже после однократного повтора с обновлённым токеном.
	// Веб-слой: HTTP 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidArgument — backend отклонил параметры запроса (400/422).
	// Веб-слой: HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden — действие запрещено для текущей роли (403).
	// Веб-слой: HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound — запрошенный ресурс отсутствует (404).
	// Веб-слой: HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable — backend недоступен, ответил 5xx или обмен
	// прерван сетевой ошибкой/таймаутом. Веб-слой: HTTP 502.
	ErrUnavailable = errors.New("backend unavailable")
)
