package middleware

import (
	"context"
)

type contextKey string

const ContextKeyCallerID contextKey = "caller_id"

func CallerIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyCallerID).(string)
	return v, ok
}
