package domain

import "context"

// Actor is the authenticated user performing a request. Services take it
// as an explicit argument; a nil *Actor means the request is anonymous.
type Actor struct {
	UserID    string
	ProfileID string
	Username  string
	IsAdmin   bool
}

type actorKey struct{}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx, or nil.
func ActorFrom(ctx context.Context) *Actor {
	a, _ := ctx.Value(actorKey{}).(*Actor)
	return a
}
