package middleware

import (
	"net/http"

	"github.com/pribylovaa/forum-web-client/internal/forumapi"
	"github.com/pribylovaa/forum-web-client/internal/forumapi/transport"
	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/session"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
	apierrors "github.com/pribylovaa/forum-web-client/internal/web/errors"
)

// RequireAuth пускает дальше только аутентифицированные запросы.
// Статус каждый раз выводится из cookie-токенов; просроченная пара
// по пути вычищается (Set-Cookie с удалением пишет CookieStore).
//
// Поведение:
//   - не аутентифицирован -> 401 session_expired с redirect_to на
//     страницу входа;
//   - roles непуст и роль сессии не из списка -> 403 forbidden;
//   - roles пуст — достаточно любой валидной роли.
func RequireAuth(ttl tokens.TTL, roles ...models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := tokens.NewCookieStore(w, r, ttl)

			st := session.Status(store)
			if !st.IsAuthenticated {
				apierrors.WriteError(w, r, transport.ErrSessionExpired)
				return
			}

			if len(roles) > 0 && !roleAllowed(st.Role, roles) {
				apierrors.WriteError(w, r, forumapi.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}

	return false
}
