package domain

import "context"

type userKey struct{}
type clientIPKey struct{}

// ContextUser carries the authenticated identity through request context.
type ContextUser struct {
	ID       int64
	Email    string
	FullName string
	Role     string
}

// WithUser stores a ContextUser in the context.
func WithUser(ctx context.Context, u ContextUser) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext extracts the ContextUser from the context.
func UserFromContext(ctx context.Context) (ContextUser, bool) {
	u, ok := ctx.Value(userKey{}).(ContextUser)
	return u, ok
}

// WithClientIP stores the request's remote address in the context so
// audit entries can record it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFromContext extracts the remote address from the context.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey{}).(string)
	return ip, ok
}
