package models

// TokenPair — пара токенов, выдаваемая backend-ом при входе/обновлении.
//
// Описание:
//   - AccessToken — короткоживущий JWT (~20 минут) для авторизации запросов;
//   - RefreshToken — долгоживущий токен (~24 часа), предъявляется только
//     эндпойнту обновления для выпуска новой пары.
//
// Инвариант: пара записывается в хранилище только целиком — обновлённый
// access никогда не соседствует с устаревшим refresh и наоборот.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Empty сообщает, что пара не содержит ни одного токена.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// SessionStatus — производный, эфемерный статус аутентификации.
// Никогда не сохраняется; каждый раз пересчитывается из текущих токенов.
//
// Инвариант: IsAuthenticated == true влечёт Role != RoleUnknown.
type SessionStatus struct {
	IsAuthenticated bool `json:"is_authenticated"`
	Role            Role `json:"role"`
}

// Unauthenticated — статус «не аутентифицирован» (fail closed).
func Unauthenticated() SessionStatus {
	return SessionStatus{IsAuthenticated: false, Role: RoleUnknown}
}
