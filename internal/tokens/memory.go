package tokens

import (
	"sync"
	"time"

	"github.com/pribylovaa/forum-web-client/internal/models"
)

// MemoryStore — хранилище токенов в памяти процесса с тем же контрактом,
// что и CookieStore. Используется программными клиентами API и тестами
// конвейера, где HTTP-обмена с браузером нет.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// AccessToken возвращает действующий access-токен или "" (fail closed).
func (s *MemoryStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.values[AccessCookie]
	if token == "" || Expired(token, time.Now()) {
		return ""
	}

	return token
}

// RefreshToken возвращает refresh-токен или "" (без проверки срока).
func (s *MemoryStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.values[RefreshCookie]
}

func (s *MemoryStore) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[AccessCookie] = token
}

func (s *MemoryStore) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[RefreshCookie] = token
}

// SetPair записывает обе половины пары под одной блокировкой.
func (s *MemoryStore) SetPair(pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[AccessCookie] = pair.AccessToken
	s.values[RefreshCookie] = pair.RefreshToken
}

// ClearTokens удаляет первичную пару; идемпотентна.
func (s *MemoryStore) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, AccessCookie)
	delete(s.values, RefreshCookie)
}

// ProvisionalPair возвращает временную пару социального входа.
func (s *MemoryStore) ProvisionalPair() models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.TokenPair{
		AccessToken:  s.values[ProvisionalAccessCookie],
		RefreshToken: s.values[ProvisionalRefreshCookie],
	}
}

func (s *MemoryStore) SetProvisionalPair(pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[ProvisionalAccessCookie] = pair.AccessToken
	s.values[ProvisionalRefreshCookie] = pair.RefreshToken
}

func (s *MemoryStore) ClearProvisional() {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, ProvisionalAccessCookie)
	delete(s.values, ProvisionalRefreshCookie)
}
