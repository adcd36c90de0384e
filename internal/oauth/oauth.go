// oauth реализует социальный вход через Google и GitHub.
//
// Поток:
//  1. пользователь уходит на authorize-URL провайдера (см. urls.go);
//  2. провайдер возвращает его на RedirectURI: Google — с access_token
//     (implicit flow), GitHub — с одноразовым code;
//  3. Exchanger обменивает полученное на временную пару токенов форума
//     (для GitHub — через промежуточный обмен code на токен провайдера);
//  4. временная пара хранится отдельно от первичной до выбора роли;
//  5. Promote закрепляет роль и повышает временную пару до первичной.
//
// Пока роль не выбрана, пользователь не считается аутентифицированным:
// временная пара не участвует ни в статусе сессии, ни в авторизации
// обычных запросов.
package oauth

import "errors"

var (
	// ErrMalformedCallback — callback провайдера не содержит ни
	// access_token, ни code. Веб-слой: HTTP 400.
	ErrMalformedCallback = errors.New("malformed oauth callback")

	// ErrAlreadyProcessed — повторная попытка обменять тот же callback.
	// Одноразовые code/token нельзя предъявлять дважды.
	ErrAlreadyProcessed = errors.New("oauth callback already processed")

	// ErrNoProvisionalSession — выбор роли без предшествующего успешного
	// обмена: временная пара отсутствует. Веб-слой: HTTP 401.
	ErrNoProvisionalSession = errors.New("no provisional session")
)

// State — фаза обмена callback'а.
type State int32

const (
	// StateAwaitingCallback — обмен ещё не начинался.
	StateAwaitingCallback State = iota
	// StateExchanging — обмен выполняется.
	StateExchanging
	// StateDone — временная пара получена и сохранена.
	StateDone
	// StateFailed — обмен не удался; временная пара очищена.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingCallback:
		return "awaiting_callback"
	case StateExchanging:
		return "exchanging"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
