package oauth

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/pribylovaa/forum-web-client/internal/forumapi"
	"github.com/pribylovaa/forum-web-client/internal/models"
)

// Callback — распознанные параметры возврата из провайдера.
// Заполнено ровно одно из полей ProviderToken/Code.
type Callback struct {
	// Backend — идентификатор провайдера для convert-token.
	Backend string
	// ProviderToken — access_token провайдера (Google, implicit flow).
	ProviderToken string
	// Code — одноразовый код авторизации (GitHub, code flow).
	Code string
}

// ParseCallback разбирает URL возврата из провайдера.
// Google отдаёт access_token во фрагменте; фрагмент не доходит до
// сервера сам, поэтому страница возврата пробрасывает его
// query-параметром. GitHub присылает code обычным query-параметром.
// Приоритет за access_token: был замечен он — провайдер Google.
func ParseCallback(u *url.URL) (Callback, error) {
	q := u.Query()

	if token := q.Get("access_token"); token != "" {
		return Callback{Backend: forumapi.BackendGoogle, ProviderToken: token}, nil
	}

	if code := q.Get("code"); code != "" {
		return Callback{Backend: forumapi.BackendGithub, Code: code}, nil
	}

	return Callback{}, ErrMalformedCallback
}

// Exchanger обменивает callback провайдера на временную пару токенов.
// Экземпляр одноразовый: живёт в рамках одного callback-запроса и
// гарантирует, что одноразовый code/token не будет предъявлен дважды.
type Exchanger struct {
	api         *forumapi.Client
	redirectURI string
	state       atomic.Int32
}

// NewExchanger создаёт обменник в состоянии StateAwaitingCallback.
func NewExchanger(api *forumapi.Client, redirectURI string) *Exchanger {
	return &Exchanger{api: api, redirectURI: redirectURI}
}

// State возвращает текущую фазу обмена.
func (e *Exchanger) State() State {
	return State(e.state.Load())
}

// Exchange выполняет обмен callback'а на временную пару и сохраняет её
// в хранилище клиента. Повторный вызов возвращает ErrAlreadyProcessed.
// При неуспехе временная пара очищается, состояние — StateFailed.
func (e *Exchanger) Exchange(ctx context.Context, cb Callback) (models.TokenPair, error) {
	const op = "oauth.Exchange"

	if !e.state.CompareAndSwap(int32(StateAwaitingCallback), int32(StateExchanging)) {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrAlreadyProcessed)
	}

	pair, err := e.exchange(ctx, cb)
	if err != nil {
		e.api.Store().ClearProvisional()
		e.state.Store(int32(StateFailed))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	e.api.Store().SetProvisionalPair(pair)
	e.state.Store(int32(StateDone))

	return pair, nil
}

func (e *Exchanger) exchange(ctx context.Context, cb Callback) (models.TokenPair, error) {
	switch cb.Backend {
	case forumapi.BackendGoogle:
		return e.api.ConvertToken(ctx, forumapi.BackendGoogle, cb.ProviderToken)
	case forumapi.BackendGithub:
		providerToken, err := e.api.GithubToken(ctx, cb.Code, e.redirectURI)
		if err != nil {
			return models.TokenPair{}, err
		}
		return e.api.ConvertToken(ctx, forumapi.BackendGithub, providerToken)
	default:
		return models.TokenPair{}, ErrMalformedCallback
	}
}

// Promote закрепляет выбранную роль за пользователем социального входа
// и повышает временную пару до первичной.
// Ошибка закрепления оставляет временную пару на месте: пользователь
// может повторить выбор роли без нового прохода через провайдера.
func Promote(ctx context.Context, api *forumapi.Client, role models.Role) error {
	const op = "oauth.Promote"

	if !role.Valid() {
		return fmt.Errorf("%s: %w: role %q", op, forumapi.ErrInvalidArgument, role)
	}

	provisional := api.Store().ProvisionalPair()
	if provisional.Empty() {
		return fmt.Errorf("%s: %w", op, ErrNoProvisionalSession)
	}

	final, err := api.ChangeRole(ctx, models.RoleID(role), provisional.AccessToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	api.Store().SetPair(final)
	api.Store().ClearProvisional()

	return nil
}
