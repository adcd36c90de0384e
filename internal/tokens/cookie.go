package tokens

import (
	"net/http"
	"sync"
	"time"

	"github.com/pribylovaa/forum-web-client/internal/models"
)

// CookieStore — хранилище токенов поверх cookie одного HTTP-обмена.
//
// Читает входящие cookie запроса, пишет Set-Cookie в ответ. Значения,
// записанные в рамках текущего запроса, перекрывают входящие cookie
// (overlay), поэтому свежая пара после refresh видна немедленно — до
// того, как браузер пришлёт её обратно.
//
// Атрибуты записи фиксированы контрактом платформы:
// path=/; Secure; SameSite=Strict; max-age по сроку жизни токена.
//
// Экземпляр безопасен для конкурентного использования: несколько
// исходящих вызовов одного запроса могут разделять одно хранилище.
type CookieStore struct {
	mu sync.Mutex
	r  *http.Request
	w  http.ResponseWriter

	ttl TTL

	// overlay: имя cookie -> записанное значение; nil — cookie удалена.
	overlay map[string]*string
}

// NewCookieStore создаёт хранилище на время жизни одного запроса.
func NewCookieStore(w http.ResponseWriter, r *http.Request, ttl TTL) *CookieStore {
	return &CookieStore{
		r:       r,
		w:       w,
		ttl:     ttl,
		overlay: make(map[string]*string),
	}
}

func (s *CookieStore) get(name string) string {
	if v, ok := s.overlay[name]; ok {
		if v == nil {
			return ""
		}

		return *v
	}

	c, err := s.r.Cookie(name)
	if err != nil || c == nil {
		return ""
	}

	return c.Value
}

func (s *CookieStore) set(name, value string, maxAge time.Duration) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	v := value
	s.overlay[name] = &v
}

func (s *CookieStore) del(name string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	s.overlay[name] = nil
}

// AccessToken возвращает действующий access-токен или "".
// Протухший или неразбираемый токен неотличим от отсутствующего.
func (s *CookieStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.get(AccessCookie)
	if token == "" || Expired(token, time.Now()) {
		return ""
	}

	return token
}

// RefreshToken возвращает refresh-токен или "" (без проверки срока).
func (s *CookieStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.get(RefreshCookie)
}

// SetAccessToken перезаписывает access-токен.
func (s *CookieStore) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(AccessCookie, token, s.ttl.Access)
}

// SetRefreshToken перезаписывает refresh-токен.
func (s *CookieStore) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(RefreshCookie, token, s.ttl.Refresh)
}

// SetPair записывает обе половины пары под одной блокировкой:
// промежуточное состояние «новый access + старый refresh» не наблюдаемо.
func (s *CookieStore) SetPair(pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(AccessCookie, pair.AccessToken, s.ttl.Access)
	s.set(RefreshCookie, pair.RefreshToken, s.ttl.Refresh)
}

// ClearTokens удаляет первичную пару; идемпотентна.
func (s *CookieStore) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.del(AccessCookie)
	s.del(RefreshCookie)
}

// ProvisionalPair возвращает временную пару социального входа.
func (s *CookieStore) ProvisionalPair() models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.TokenPair{
		AccessToken:  s.get(ProvisionalAccessCookie),
		RefreshToken: s.get(ProvisionalRefreshCookie),
	}
}

// SetProvisionalPair записывает временную пару целиком.
func (s *CookieStore) SetProvisionalPair(pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(ProvisionalAccessCookie, pair.AccessToken, s.ttl.Access)
	s.set(ProvisionalRefreshCookie, pair.RefreshToken, s.ttl.Refresh)
}

// ClearProvisional удаляет временную пару; идемпотентна.
func (s *CookieStore) ClearProvisional() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.del(ProvisionalAccessCookie)
	s.del(ProvisionalRefreshCookie)
}
