package api

import (
	"context"

	"github.com/webmaek/aventus/auth"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity stores the authenticated caller in the context
func ctxWithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// ctxGetIdentity retrieves the authenticated caller. ok is false for anonymous requests.
func ctxGetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}
