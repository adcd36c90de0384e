// session выводит статус аутентификации из текущего содержимого
// хранилища токенов.
//
// Статус нигде не хранится: он пересчитывается на каждую проверку
// (навигацию/запрос) из cookie. Функция синхронна, в сеть не ходит и не
// имеет побочных эффектов, кроме одного оговорённого: протухший
// refresh-токен означает конец сессии, и хранилище чистится на месте.
package session

import (
	"time"

	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
)

// Status вычисляет статус сессии.
//
// Алгоритм:
//  1. refresh присутствует и протух -> чистим обе cookie, не аутентифицирован;
//  2. нет ни access, ни refresh -> не аутентифицирован;
//  3. роль читаем из access (предпочтительно) либо из refresh;
//  4. любой сбой разбора или неизвестная роль -> не аутентифицирован
//     (fail closed); за эту границу ошибки не выходят.
//
// Инвариант результата: IsAuthenticated влечёт валидную роль.
func Status(store tokens.Store) models.SessionStatus {
	refresh := store.RefreshToken()
	if refresh != "" && tokens.Expired(refresh, time.Now()) {
		store.ClearTokens()
		return models.Unauthenticated()
	}

	// AccessToken() сам по себе fail closed: протухший токен уже отсечён.
	access := store.AccessToken()
	if access == "" && refresh == "" {
		return models.Unauthenticated()
	}

	introspect := access
	if introspect == "" {
		introspect = refresh
	}

	role, err := tokens.RoleClaim(introspect)
	if err != nil || !role.Valid() {
		return models.Unauthenticated()
	}

	return models.SessionStatus{IsAuthenticated: true, Role: role}
}
