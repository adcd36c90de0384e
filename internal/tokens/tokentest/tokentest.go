// tokentest выпускает подписанные JWT для unit-тестов клиента.
// Подпись значения не имеет: клиент разбирает токены без проверки ключа,
// но тестовые токены делаем структурно честными.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const signingSecret = "tokentest-secret"

// Sign выпускает HS256-токен с claim-ами role и exp.
func Sign(t *testing.T, role int, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  exp.Unix(),
	})

	signed, err := token.SignedString([]byte(signingSecret))
	require.NoError(t, err)

	return signed
}

// SignWithoutExp выпускает токен без claim exp (для проверок fail closed).
func SignWithoutExp(t *testing.T, role int) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
	})

	signed, err := token.SignedString([]byte(signingSecret))
	require.NoError(t, err)

	return signed
}
