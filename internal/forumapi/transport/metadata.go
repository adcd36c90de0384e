package transport

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	logctx "github.com/pribylovaa/forum-web-client/pkg/log"
)

// CtxKey — тип ключей контекста, разделяемых веб-слоем и транспортом.
type CtxKey string

const (
	// CtxRequestID — request id входящего запроса; транспорт пробрасывает
	// его в исходящий X-Request-Id для сквозной трассировки.
	CtxRequestID CtxKey = "request_id"
)

// metadataRT добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из контекста, либо генерируется новый);
//   - User-Agent (если задан).
//
// Заголовки, уже выставленные вызывающим, не перетираются.
type metadataRT struct {
	next      http.RoundTripper
	userAgent string
}

func (m *metadataRT) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if out.Header.Get("X-Request-Id") == "" {
		rid := ""
		if v := req.Context().Value(CtxRequestID); v != nil {
			rid, _ = v.(string)
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		out.Header.Set("X-Request-Id", rid)

		// Сгенерированный id попадает и в логи нижних слоёв.
		out = out.WithContext(logctx.With(out.Context(), slog.String("request_id", rid)))
	}

	if m.userAgent != "" && out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", m.userAgent)
	}

	return m.next.RoundTrip(out)
}
