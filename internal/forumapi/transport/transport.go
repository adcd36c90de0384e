// transport реализует конвейер исходящих HTTP-запросов к backend-API
// в виде цепочки http.RoundTripper-ов.
//
// Порядок слоёв (внешний -> внутренний): metadata -> timeout -> logging
// -> auth -> базовый транспорт. Слой auth присутствует только в
// аутентифицированном клиенте; «голый» клиент (login, refresh,
// github-token, convert-token) собирается из той же цепочки без него и
// потому гарантированно не попадает в рекурсию 401-ретраев.
package transport

import (
	"net/http"
	"time"
)

// Options — параметры сборки цепочки.
type Options struct {
	// UserAgent проставляется в каждый исходящий запрос.
	UserAgent string
	// Timeout — дедлайн одного исходящего вызова; <=0 — без дедлайна.
	Timeout time.Duration
	// Base — базовый транспорт; nil означает http.DefaultTransport.
	Base http.RoundTripper
}

func (o Options) base() http.RoundTripper {
	if o.Base != nil {
		return o.Base
	}

	return http.DefaultTransport
}

// NewBare собирает цепочку без слоя auth: metadata -> timeout -> logging.
// Такой клиент шлёт запросы без Authorization и не участвует в
// обновлении токенов.
func NewBare(opts Options) http.RoundTripper {
	return &metadataRT{
		next: &timeoutRT{
			next: &loggingRT{next: opts.base()},
			d:    opts.Timeout,
		},
		userAgent: opts.UserAgent,
	}
}

// NewAuthenticated собирает полную цепочку с auth-слоем поверх NewBare:
// бережно к порядку — auth самый внутренний, чтобы ретрай после refresh
// прошёл через те же metadata/timeout/logging.
func NewAuthenticated(opts Options, auth *AuthLayer) http.RoundTripper {
	auth.next = opts.base()

	return &metadataRT{
		next: &timeoutRT{
			next: &loggingRT{next: auth},
			d:    opts.Timeout,
		},
		userAgent: opts.UserAgent,
	}
}
