package auth

import (
	"context"
)

type contextKey string

const (
	contextKeyCaller contextKey = "caller"
	contextKeyMethod contextKey = "auth_method"
)

// Authentication methods
const (
	MethodJWT       = "jwt"
	MethodSignature = "eip191"
)

// WithCaller stores the authenticated caller identity and how it was established.
func WithCaller(ctx context.Context, caller, method string) context.Context {
	ctx = context.WithValue(ctx, contextKeyCaller, caller)
	return context.WithValue(ctx, contextKeyMethod, method)
}

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(contextKeyCaller).(string)
	return caller, ok && caller != ""
}

// MethodFromContext returns the authentication method of the caller.
func MethodFromContext(ctx context.Context) string {
	method, _ := ctx.Value(contextKeyMethod).(string)
	return method
}
