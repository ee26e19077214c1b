package graph

import "context"

type readOnlyKey struct{}

// WithReadOnly marks ctx as belonging to a request that must not change
// state. Mutations executed under it fail with ErrCodeMethodNotAllowed.
func WithReadOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, readOnlyKey{}, true)
}

func readOnly(ctx context.Context) bool {
	v, _ := ctx.Value(readOnlyKey{}).(bool)
	return v
}
