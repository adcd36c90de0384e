package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/forum-web-client/internal/models"
)

var (
	// ErrMalformedToken — токен не разбирается как JWT или не содержит
	// ожидаемых claim-ов. На статус сессии маппится как «токена нет».
	ErrMalformedToken = errors.New("malformed token")
)

// tokenClaims — интересующая клиента часть полезной нагрузки токена:
// числовая роль и стандартные registered-claims (exp).
type tokenClaims struct {
	Role int `json:"role"`
	jwt.RegisteredClaims
}

// claimsParser разбирает токен без проверки подписи: ключа подписи у
// клиента нет, подпись проверяет backend. Валидацию claim-ов тоже
// отключаем — клиенту нужен сырой exp, решение принимает вызывающий.
var claimsParser = jwt.NewParser(jwt.WithoutClaimsValidation())

func parseClaims(token string) (*tokenClaims, error) {
	const op = "tokens.parseClaims"

	var claims tokenClaims
	if _, _, err := claimsParser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedToken)
	}

	return &claims, nil
}

// Expired сообщает, истёк ли срок действия токена по локальным часам.
//
// Контракт (fail closed):
//  1. пустой или неразбираемый токен — протух;
//  2. отсутствие claim exp — протух;
//  3. exp строго в прошлом — протух;
//  4. иначе — действует. Поблажек на рассинхронизацию часов нет:
//     семантика exp одинакова на клиенте и сервере.
func Expired(token string, now time.Time) bool {
	claims, err := parseClaims(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.Time.Before(now)
}

// RoleClaim извлекает роль из полезной нагрузки токена.
// Неизвестный числовой код роли отдаётся как RoleUnknown без ошибки:
// ошибкой считается только неразбираемый токен.
func RoleClaim(token string) (models.Role, error) {
	const op = "tokens.RoleClaim"

	claims, err := parseClaims(token)
	if err != nil {
		return models.RoleUnknown, fmt.Errorf("%s: %w", op, err)
	}

	return models.RoleName(claims.Role), nil
}
