package http

import "context"

// callerKey is a context key type for storing the authenticated caller subject.
type callerKey struct{}

// WithCaller stores the authenticated caller subject (JWT sub) in the context.
func WithCaller(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, callerKey{}, subject)
}

// GetCaller retrieves the authenticated caller subject from the context.
// Returns ("", false) when caller authentication is disabled or did not run.
func GetCaller(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(callerKey{}).(string)
	return subject, ok
}
