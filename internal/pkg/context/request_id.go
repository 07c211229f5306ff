// Package context carries per-request values that cross package
// boundaries without creating import cycles.
package context

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a child context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id carried by ctx, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
