package booking

import (
	"context"

	"github.com/goliatone/go-router"
)

// ResolutionReason explains why a request carries, or does not carry, an
// identity. The gate records the reason instead of failing the request;
// route guards decide what a missing identity means.
type ResolutionReason string

const (
	ReasonAuthenticated  ResolutionReason = "authenticated"
	ReasonMissingToken   ResolutionReason = "missing_token"
	ReasonInvalidToken   ResolutionReason = "invalid_token"
	ReasonUnknownSubject ResolutionReason = "unknown_subject"
	ReasonResolverError  ResolutionReason = "resolver_error"
)

// Resolution is the outcome of the identity gate for one request
type Resolution struct {
	Identity Identity
	Reason   ResolutionReason
}

// Authenticated reports whether the request resolved to a known account
func (r Resolution) Authenticated() bool {
	return r.Identity != nil && r.Reason == ReasonAuthenticated
}

var identityCtxKey = &contextKey{"identity"}
var resolutionCtxKey = &contextKey{"resolution"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the Identity in the given context
func WithIdentityContext(r context.Context, identity Identity) context.Context {
	return context.WithValue(r, identityCtxKey, identity)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

// WithResolutionContext sets the gate Resolution in the given context
func WithResolutionContext(r context.Context, res Resolution) context.Context {
	return context.WithValue(r, resolutionCtxKey, res)
}

// ResolutionFromContext extracts the gate Resolution from the context
func ResolutionFromContext(ctx context.Context) (Resolution, bool) {
	raw, ok := ctx.Value(resolutionCtxKey).(Resolution)
	return raw, ok
}

// RouterIdentity extracts the Identity from the router context
func RouterIdentity(ctx router.Context, key string) (Identity, bool) {
	if key == "" {
		key = "user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(Identity)
	return identity, ok
}

// RouterResolution rebuilds the gate Resolution from the router context.
// The gate stores the identity under the context key and the reason under
// the context key suffixed with ":reason".
func RouterResolution(ctx router.Context, key string) (Resolution, bool) {
	if key == "" {
		key = "user"
	}

	raw := ctx.Locals(key + ":reason")
	if raw == nil {
		return Resolution{}, false
	}

	reason, ok := raw.(string)
	if !ok {
		return Resolution{}, false
	}

	res := Resolution{Reason: ResolutionReason(reason)}
	if identity, ok := RouterIdentity(ctx, key); ok {
		res.Identity = identity
	}

	return res, true
}
