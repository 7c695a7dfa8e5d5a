package web

import "context"

type userIDKey struct{}

// WithUserID adds the authenticated caller id to the context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID retrieves the authenticated caller id from the context.
// Returns the id and a boolean indicating whether a non-empty id was found.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
