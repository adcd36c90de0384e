// web — HTTP-слой веб-клиента: маршрутизация, мидлвары, хендлеры
// и унифицированные ответы об ошибках.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/forum-web-client/internal/forumapi"
	"github.com/pribylovaa/forum-web-client/internal/oauth"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
	"github.com/pribylovaa/forum-web-client/internal/web/handlers"
	"github.com/pribylovaa/forum-web-client/internal/web/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	API     forumapi.Config
	OAuth   oauth.Config
	TTL     tokens.TTL
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(opts Options) http.Handler {
	root := chi.NewRouter()

	h := handlers.New(opts.API, opts.OAuth, opts.TTL)

	// Открытые маршруты: вход, выход, статус, социальный вход.
	root.Post("/auth/login", h.Login)
	root.Post("/auth/logout", h.Logout)
	root.Get("/auth/status", h.Status)
	root.Get("/auth/social", h.SocialURLs)
	root.Get("/oauth2callback/", h.OAuthCallback)
	root.Post("/choose_role/", h.ChooseRole)

	// Маршруты, требующие аутентификации.
	root.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(opts.TTL))

		r.Get("/my_profile/", h.MyProfile)
		r.Get("/startups/", h.Startups)
	})

	// Общая обвязка (внешний -> внутренний).
	return middleware.Chain(root,
		middleware.Recover(),             // безопасно ловим паники
		middleware.RequestID(),           // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),  // кладём request-scoped логгер в контекст и логируем
		middleware.Timeout(opts.Timeout), // общий дедлайн запроса; <=0 — no-op
	)
}
