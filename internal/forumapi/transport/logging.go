package transport

import (
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/forum-web-client/pkg/log"
)

// loggingRT — логирование исходящих вызовов backend-API.
// Поведение:
//   - берёт request-scoped логгер из контекста (pkg/log);
//   - пишет одну финальную запись уровня Info: msg="api_call",
//     method, path, status, dur.
//
// Безопасность: не логирует payload, токены и заголовок Authorization.
type loggingRT struct {
	next http.RoundTripper
}

func (l *loggingRT) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := l.next.RoundTrip(req)

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Duration("dur", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	} else {
		attrs = append(attrs, slog.Int("status", resp.StatusCode))
	}

	logctx.From(req.Context()).LogAttrs(req.Context(), slog.LevelInfo, "api_call", attrs...)

	return resp, err
}
