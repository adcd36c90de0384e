package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired — терминальная ошибка пользовательской сессии:
// refresh-токен отсутствует, отклонён backend'ом или обмен не удался.
// Все токены к этому моменту уже очищены; на уровне handler'ов
// ошибка транслируется в редирект на страницу входа.
var ErrSessionExpired = errors.New("session expired")

// RefreshFunc обменивает refresh-токен на новую пару токенов.
// Реализацию предоставляет API-клиент поверх "голого" транспорта,
// чтобы сам обмен не проходил через авторизующий слой.
type RefreshFunc func(ctx context.Context, refreshToken string) (models.TokenPair, error)

// Coordinator сериализует конкурентные попытки обновления access-токена.
// Контракт:
//   - при любом числе одновременных вызовов выполняется ровно один
//     сетевой обмен на каждый refresh-токен (singleflight);
//   - успешный обмен атомарно сохраняет обе половины пары в Store;
//   - неуспешный обмен очищает токены и возвращает ErrSessionExpired;
//   - сетевой вызов ограничен собственным таймаутом и не зависит от
//     контекста первого из ожидающих вызовов.
type Coordinator struct {
	store   tokens.Store
	refresh RefreshFunc
	timeout time.Duration
	group   singleflight.Group
}

// NewCoordinator создаёт координатор обновления токенов.
// timeout <= 0 означает отсутствие ограничения на сетевой обмен.
func NewCoordinator(store tokens.Store, refresh RefreshFunc, timeout time.Duration) *Coordinator {
	return &Coordinator{
		store:   store,
		refresh: refresh,
		timeout: timeout,
	}
}

// RefreshAccessToken обновляет пару токенов и возвращает новый access-токен.
// Возвращает ErrSessionExpired, если refresh-токен отсутствует или
// backend отказал в обмене.
func (c *Coordinator) RefreshAccessToken(ctx context.Context) (string, error) {
	const op = "transport.Coordinator.RefreshAccessToken"

	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.store.ClearTokens()
		return "", fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	access, err, _ := c.group.Do(refreshToken, func() (any, error) {
		// Обмен живёт в собственном контексте: отмена контекста
		// первого вызова не должна ронять обновление для остальных.
		callCtx := context.Background()
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, c.timeout)
			defer cancel()
		}

		pair, err := c.refresh(callCtx, refreshToken)
		if err != nil {
			c.store.ClearTokens()
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}

		c.store.SetPair(pair)

		return pair.AccessToken, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return access.(string), nil
}
