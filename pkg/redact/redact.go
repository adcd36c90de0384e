// redact содержит хелперы для безопасного логирования чувствительных
// значений: e-mail маскируется с сохранением домена, токены и пароли
// заменяются литералами целиком.
package redact

import "strings"

// Email маскирует локальную часть адреса, оставляя первые две руны и домен.
// Любой невалидный формат схлопывается в "***".
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	runes := []rune(local)
	if len(runes) > 2 {
		local = string(runes[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
