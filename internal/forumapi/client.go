// forumapi — клиент backend-API форума.
//
// Клиент держит два HTTP-конвейера:
//   - аутентифицированный: Authorization из Store, однократный повтор
//     после обновления пары на первый 401;
//   - «голый»: login, refresh, github-token и convert-token идут без
//     авторизующего слоя и не могут зациклить обновление токенов.
//
// Ошибки нормализуются в sentinel-переменные пакета (см. errors.go);
// истёкшая сессия приходит как transport.ErrSessionExpired.
package forumapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/forum-web-client/internal/forumapi/transport"
	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
)

// apiPrefix — префикс версионированных маршрутов backend-API.
// convert-token исторически живёт на уровне хоста и префикс не получает.
const apiPrefix = "api/v1/"

// Backend-идентификаторы провайдеров социального входа в том виде,
// в каком их ожидает auth/convert-token.
const (
	BackendGoogle = "google-oauth2"
	BackendGithub = "github"
)

// Config — параметры клиента backend-API.
type Config struct {
	// BaseURL — корень хоста backend'а, например "https://forum.example.com/".
	BaseURL string
	// StartupsPath — маршрут каталога стартапов относительно apiPrefix.
	StartupsPath string
	// ClientID — OAuth client id приложения для convert-token.
	ClientID string
	// Timeout — дедлайн одного исходящего вызова.
	Timeout time.Duration
	// RefreshTimeout — дедлайн обмена refresh-токена.
	RefreshTimeout time.Duration
	// UserAgent исходящих запросов.
	UserAgent string
}

// Client — клиент backend-API поверх tokens.Store.
// Экземпляр не потокобезопасен в той же мере, что и переданный Store:
// request-scoped CookieStore живёт в рамках одного входящего запроса.
type Client struct {
	cfg    Config
	store  tokens.Store
	bare   *http.Client
	authed *http.Client
}

// New создаёт клиент и собирает оба конвейера.
func New(cfg Config, store tokens.Store) *Client {
	c := &Client{cfg: cfg, store: store}

	opts := transport.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	}

	c.bare = &http.Client{Transport: transport.NewBare(opts)}

	coordinator := transport.NewCoordinator(store, c.refreshCall, cfg.RefreshTimeout)
	c.authed = &http.Client{Transport: transport.NewAuthenticated(opts, transport.NewAuthLayer(store, coordinator))}

	return c
}

// Store возвращает хранилище токенов, с которым собран клиент.
func (c *Client) Store() tokens.Store {
	return c.store
}

func (c *Client) hostURL(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) apiURL(path string) string {
	return c.hostURL(apiPrefix + strings.TrimLeft(path, "/"))
}

// Login аутентифицирует пользователя по email/паролю и сохраняет
// выданную пару токенов. 401 от backend'а возвращается как
// ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, role models.Role, email, password string) error {
	const op = "forumapi.Login"

	if !role.Valid() {
		return fmt.Errorf("%s: %w: role %q", op, ErrInvalidArgument, role)
	}

	// На проводе роль — числовой идентификатор, не имя.
	req, err := c.newJSONRequest(ctx, http.MethodPost, c.apiURL("auth/login/"), map[string]any{
		"role":     models.RoleID(role),
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := c.do(c.bare, req, &out); err != nil {
		if status, ok := statusOf(err); ok && status == http.StatusUnauthorized {
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	c.store.SetPair(models.TokenPair{AccessToken: out.Access, RefreshToken: out.Refresh})

	return nil
}

// Logout сообщает backend'у об отзыве refresh-токена и очищает локальную
// пару. Локальная очистка выполняется даже при ошибке сетевого вызова:
// сессия на клиенте завершается безусловно.
func (c *Client) Logout(ctx context.Context) error {
	const op = "forumapi.Logout"

	refresh := c.store.RefreshToken()
	defer c.store.ClearTokens()

	if refresh == "" {
		return nil
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.apiURL("auth/logout/"), map[string]string{
		"refresh": refresh,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.do(c.authed, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Me возвращает профиль текущего пользователя.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	const op = "forumapi.Me"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL("auth/me/"), nil)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	if err := c.do(c.authed, req, &user); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Startups возвращает каталог стартапов.
func (c *Client) Startups(ctx context.Context) ([]models.Startup, error) {
	const op = "forumapi.Startups"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(c.cfg.StartupsPath), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var startups []models.Startup
	if err := c.do(c.authed, req, &startups); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return startups, nil
}

// ChangeRole закрепляет роль за пользователем социального входа.
// Запрос уходит по «голому» конвейеру с явным bearer'ом (временный
// access-токен), чтобы не задевать первичную пару. Возвращает новую
// пару токенов с ролью в claims.
func (c *Client) ChangeRole(ctx context.Context, roleID int, bearer string) (models.TokenPair, error) {
	const op = "forumapi.ChangeRole"

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.apiURL("auth/change-role/"), map[string]int{
		"role": roleID,
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := c.do(c.bare, req, &out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{AccessToken: out.Access, RefreshToken: out.Refresh}, nil
}

// GithubToken обменивает одноразовый code из callback'а GitHub на
// access-токен провайдера. Серверный обмен нужен потому, что code
// нельзя обменять из браузера без client secret.
func (c *Client) GithubToken(ctx context.Context, code, redirectURI string) (string, error) {
	const op = "forumapi.GithubToken"

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.apiURL("auth/github-token/"), map[string]string{
		"code":         code,
		"redirect_uri": redirectURI,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var out struct {
		GithubAccessToken string `json:"github_access_token"`
	}
	if err := c.do(c.bare, req, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if out.GithubAccessToken == "" {
		return "", fmt.Errorf("%s: %w: empty provider token", op, ErrInvalidArgument)
	}

	return out.GithubAccessToken, nil
}

// ConvertToken обменивает токен провайдера (google-oauth2/github) на
// пару токенов форума. Маршрут живёт на уровне хоста и принимает
// форму, а не JSON.
func (c *Client) ConvertToken(ctx context.Context, backend, providerToken string) (models.TokenPair, error) {
	const op = "forumapi.ConvertToken"

	form := url.Values{
		"grant_type": {"convert_token"},
		"client_id":  {c.cfg.ClientID},
		"backend":    {backend},
		"token":      {providerToken},
	}

	body := form.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hostURL("auth/convert-token"), strings.NewReader(body))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.do(c.bare, req, &out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// refreshCall — сетевой обмен refresh-токена; вызывается только
// координатором обновления по «голому» конвейеру.
func (c *Client) refreshCall(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "forumapi.refreshCall"

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.apiURL("auth/token/refresh/"), map[string]string{
		"refresh": refreshToken,
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := c.do(c.bare, req, &out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{AccessToken: out.Access, RefreshToken: out.Refresh}, nil
}

// newJSONRequest собирает запрос с JSON-телом поверх bytes.Reader,
// чтобы у запроса был GetBody и авторизующий слой мог его повторить.
func (c *Client) newJSONRequest(ctx context.Context, method, target string, payload any) (*http.Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// statusError сохраняет исходный HTTP-статус рядом с sentinel-ошибкой,
// чтобы вызывающие могли различить, например, 401 логина и 401 запроса.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return fmt.Sprintf("status %d: %v", e.status, e.err) }

func (e *statusError) Unwrap() error { return e.err }

func statusOf(err error) (int, bool) {
	var se *statusError
	if errors.As(err, &se) {
		return se.status, true
	}

	return 0, false
}

// do выполняет запрос и декодирует успешный ответ в out (nil — тело
// игнорируется). Неуспешные статусы нормализуются в sentinel-ошибки;
// сетевые ошибки и 5xx приходят как ErrUnavailable, истёкшая сессия —
// как transport.ErrSessionExpired без подмены.
func (c *Client) do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		// url.Error разворачивается штатно, ErrSessionExpired доходит
		// до вызывающего без подмены на ErrUnavailable.
		if errors.Is(err, transport.ErrSessionExpired) {
			return transport.ErrSessionExpired
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &statusError{status: resp.StatusCode, err: errorFromStatus(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	return nil
}

func errorFromStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrInvalidArgument
	case status >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}
