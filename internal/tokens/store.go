// tokens реализует клиентское хранилище токенов: первичную пару
// accessToken/refreshToken и временную (provisional) пару социального
// входа под отдельными ключами.
//
// Основные аспекты:
//   - все операции синхронны и не ходят в сеть;
//   - AccessToken() никогда не возвращает протухший токен: срок действия
//     проверяется локально по claim exp (см. jwt.go), битый токен
//     считается протухшим (fail closed);
//   - RefreshToken() срок не проверяет — это зона ответственности
//     session-евалюатора, который при протухшем refresh чистит хранилище;
//   - SetPair записывает обе половины пары атомарно с точки зрения
//     вызывающего: координатор обновления — единственный, кто пишет
//     обновлённую пару;
//   - ClearTokens/ClearProvisional идемпотентны.
package tokens

import (
	"time"

	"github.com/pribylovaa/forum-web-client/internal/models"
)

// Имена cookie совпадают с проводными ключами платформы.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	// Временная пара социального входа хранится под отдельными ключами
	// и никогда не пересекается с первичной.
	ProvisionalAccessCookie  = "socialAccessToken"
	ProvisionalRefreshCookie = "socialRefreshToken"
)

// Store — контракт хранилища токенов.
//
// Хранилище конструируется на время жизни одной сессии (для веб-слоя —
// на время одного запроса поверх cookie) и передаётся явно в
// session-евалюатор и конвейер запросов; глобального состояния нет.
type Store interface {
	// AccessToken возвращает действующий access-токен или "".
	AccessToken() string
	// RefreshToken возвращает refresh-токен или "" (без проверки срока).
	RefreshToken() string

	// SetAccessToken/SetRefreshToken перезаписывают соответствующий токен.
	SetAccessToken(token string)
	SetRefreshToken(token string)
	// SetPair атомарно записывает обе половины пары.
	SetPair(pair models.TokenPair)
	// ClearTokens удаляет первичную пару из всех мест хранения; идемпотентна.
	ClearTokens()

	// ProvisionalPair возвращает временную пару социального входа.
	ProvisionalPair() models.TokenPair
	// SetProvisionalPair записывает временную пару целиком.
	SetProvisionalPair(pair models.TokenPair)
	// ClearProvisional удаляет временную пару; идемпотентна.
	ClearProvisional()
}

// TTL — сроки жизни токенов; задают max-age соответствующих cookie.
type TTL struct {
	Access  time.Duration
	Refresh time.Duration
}

// DefaultTTL — сроки из контракта backend-а: access ~20 минут,
// refresh ~24 часа.
func DefaultTTL() TTL {
	return TTL{
		Access:  20 * time.Minute,
		Refresh: 24 * time.Hour,
	}
}
