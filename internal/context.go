package internal

import "context"

type ctxKeyCorrelationId struct{}

func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationId{}, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	correlationId, _ := ctx.Value(ctxKeyCorrelationId{}).(string)
	return correlationId
}

// EnsureCorrelationId returns a context carrying a correlation id, generating
// one when the given context has none.
func EnsureCorrelationId(ctx context.Context) (context.Context, string) {
	if correlationId := CorrelationIdFromCtx(ctx); correlationId != "" {
		return ctx, correlationId
	}
	correlationId := GenerateId()
	return CtxWithCorrelationId(ctx, correlationId), correlationId
}
