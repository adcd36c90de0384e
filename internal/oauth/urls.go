package oauth

import "net/url"

// Endpoint-ы авторизации провайдеров.
const (
	googleAuthorizeEndpoint = "https://accounts.google.com/o/oauth2/v2/auth"
	githubAuthorizeEndpoint = "https://github.com/login/oauth/authorize"
)

// Config — параметры социального входа.
type Config struct {
	// GoogleClientID — client id приложения в Google (implicit flow).
	GoogleClientID string
	// GithubClientID — client id приложения в GitHub (code flow).
	GithubClientID string
	// RedirectURI — адрес возврата из провайдера; должен совпадать
	// с зарегистрированным в консоли провайдера.
	RedirectURI string
}

// GoogleAuthorizeURL строит адрес входа через Google.
// Implicit flow: провайдер вернёт access_token во фрагменте URL.
func (c Config) GoogleAuthorizeURL() string {
	q := url.Values{
		"response_type": {"token"},
		"client_id":     {c.GoogleClientID},
		"redirect_uri":  {c.RedirectURI},
		"scope":         {"profile email"},
	}

	return googleAuthorizeEndpoint + "?" + q.Encode()
}

// GithubAuthorizeURL строит адрес входа через GitHub.
// Code flow: провайдер вернёт одноразовый code в query-параметре.
func (c Config) GithubAuthorizeURL() string {
	q := url.Values{
		"client_id":    {c.GithubClientID},
		"redirect_uri": {c.RedirectURI},
		"scope":        {"read:user user:email"},
	}

	return githubAuthorizeEndpoint + "?" + q.Encode()
}
