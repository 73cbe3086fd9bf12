package domain

import "context"

type actorKey struct{}

// WithActor returns a copy of ctx carrying the authenticated user.
func WithActor(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFrom returns the authenticated user stored by WithActor, or nil.
func ActorFrom(ctx context.Context) *User {
	user, _ := ctx.Value(actorKey{}).(*User)
	return user
}

// ActorID returns the ID of the authenticated user, or "" for background work.
func ActorID(ctx context.Context) string {
	if user := ActorFrom(ctx); user != nil {
		return user.ID
	}
	return ""
}
