// log реализует прокладку request-scoped логгера через context.Context.
//
// Хелперы намеренно минимальны: Into кладёт *slog.Logger в контекст,
// From достаёт его обратно (или возвращает slog.Default()), With навешивает
// атрибуты на логгер из контекста и возвращает обновлённый контекст.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With обогащает логгер из контекста атрибутами и кладёт результат обратно.
// Удобно в середине цепочки (middleware/транспорт), когда появились новые
// поля вроде request_id.
func With(ctx context.Context, attrs ...any) context.Context {
	return Into(ctx, From(ctx).With(attrs...))
}
