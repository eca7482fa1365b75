package common

import "context"

// Identity answers "who is the current viewer" for a request.
type Identity interface {
	CurrentViewer(ctx context.Context) (string, bool)
}

type viewerKey struct{}

func WithViewer(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, viewerKey{}, userID)
}

func ViewerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(viewerKey{}).(string)
	return id, ok && id != ""
}

// ContextIdentity reads the viewer placed on the context by the auth middleware.
type ContextIdentity struct{}

func (ContextIdentity) CurrentViewer(ctx context.Context) (string, bool) {
	return ViewerFrom(ctx)
}

// RequireViewer returns the viewer id or a NotAuthenticated error tagged with op.
func RequireViewer(ctx context.Context, id Identity, op string) (string, error) {
	viewer, ok := id.CurrentViewer(ctx)
	if !ok {
		return "", E(KindNotAuthenticated, op, nil)
	}
	return viewer, nil
}
