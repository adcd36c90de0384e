package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// timeoutRT навешивает дедлайн d на исходящий вызов, если у контекста
// ещё нет дедлайна. Существующий дедлайн не переопределяется.
//
// Контракт:
//  1. d <= 0 — запрос уходит как есть;
//  2. у контекста уже есть deadline — остаётся прежним;
//  3. иначе запрос оборачивается в context.WithTimeout; cancel вызывается
//     не раньше, чем тело ответа будет дочитано/закрыто, иначе чтение
//     оборвалось бы сразу после возврата RoundTrip.
type timeoutRT struct {
	next http.RoundTripper
	d    time.Duration
}

func (t *timeoutRT) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.d <= 0 {
		return t.next.RoundTrip(req)
	}
	if _, ok := req.Context().Deadline(); ok {
		return t.next.RoundTrip(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.d)

	resp, err := t.next.RoundTrip(req.Clone(ctx))
	if err != nil {
		cancel()
		return nil, err
	}

	resp.Body = &cancelBody{rc: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody откладывает cancel контекста до закрытия тела ответа.
type cancelBody struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Read(p []byte) (int, error) { return b.rc.Read(p) }

func (b *cancelBody) Close() error {
	err := b.rc.Close()
	b.cancel()
	return err
}
