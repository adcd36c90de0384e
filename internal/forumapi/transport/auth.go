package transport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/forum-web-client/internal/tokens"
)

// AuthLayer — авторизующий слой транспорта.
// Поведение:
//   - подставляет Authorization: Bearer <access> из Store
//     (если явный Bearer уже выставлен вызывающим — не трогает);
//   - на первый ответ 401 инициирует обновление пары через Coordinator
//     и повторяет запрос ровно один раз с новым токеном;
//   - повторный 401 возвращается вызывающему как есть;
//   - при невозможности обновления возвращает ErrSessionExpired.
//
// Повтор возможен только для запросов с воспроизводимым телом
// (req.GetBody != nil или тело отсутствует).
type AuthLayer struct {
	store       tokens.Store
	coordinator *Coordinator
	next        http.RoundTripper
}

// NewAuthLayer создаёт авторизующий слой. Поле next заполняется
// при сборке цепочки в NewAuthenticated.
func NewAuthLayer(store tokens.Store, coordinator *Coordinator) *AuthLayer {
	return &AuthLayer{
		store:       store,
		coordinator: coordinator,
	}
}

func (a *AuthLayer) RoundTrip(req *http.Request) (*http.Response, error) {
	const op = "transport.AuthLayer.RoundTrip"

	out := req.Clone(req.Context())
	if out.Header.Get("Authorization") == "" {
		if access := a.store.AccessToken(); access != "" {
			out.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := a.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	access, refreshErr := a.coordinator.RefreshAccessToken(req.Context())
	if refreshErr != nil {
		drain(resp)
		return nil, fmt.Errorf("%s: %w", op, refreshErr)
	}

	drain(resp)

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, fmt.Errorf("%s: replay body: %w", op, bodyErr)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+access)

	return a.next.RoundTrip(retry)
}

// drain вычитывает и закрывает тело ответа, освобождая соединение
// для переиспользования.
func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
