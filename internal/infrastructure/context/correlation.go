package context

import "context"

type contextKey string

const (
	// CorrelationIDKey holds the request id assigned by the router.
	CorrelationIDKey contextKey = "correlation_id"
	principalKey     contextKey = "principal"
)

// WithCorrelationID tags ctx with the id used to tie log lines of one request together.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID returns "" when ctx carries no correlation id.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}
