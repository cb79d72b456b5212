package booking

import (
	"context"
	"net/http"
	"strconv"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/zenstudio/go-booking/middleware/identityware"
)

// pathID parses a numeric path parameter. Malformed values are a client
// error, distinct from a well formed id that matches nothing.
func pathID(ctx router.Context, name string) (int64, error) {
	raw := ctx.Param(name, "")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid "+name+" parameter", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest).
			WithTextCode("INVALID_PARAMETER").
			WithMetadata(map[string]any{name: raw})
	}
	return id, nil
}

// ErrorResponse is the JSON body returned for every failed request
type ErrorResponse struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// RenderError maps a service error to an HTTP response. Status comes from
// the rich error code when one is attached, otherwise from the category.
func RenderError(ctx router.Context, err error, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := statusFromError(richErr)
	if status >= http.StatusInternalServerError {
		logger.Error(
			"request failed",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	} else {
		logger.Debug(
			"request rejected",
			"error", richErr.Message,
			"category", richErr.Category,
			"status", status,
		)
	}

	return ctx.JSON(status, ErrorResponse{
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	})
}

func statusFromError(richErr *errors.Error) int {
	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryBadInput, errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IdentityGate builds the request identity middleware. Every request
// passes through: the gate attaches the identity, or the reason there is
// none, and leaves enforcement to the route guards below.
func IdentityGate(auther *Auther, cfg Config, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}

	return identityware.New(identityware.Config{
		SigningKey: identityware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:        cfg.GetAuthScheme(),
		ContextKey:        cfg.GetContextKey(),
		TokenLookup:       cfg.GetTokenLookup(),
		TokenValidator:    gateValidator{service: auther.TokenService()},
		PrincipalResolver: gateResolver{auth: auther},
		IsUnknownSubject: func(err error) bool {
			return errors.IsNotFound(err) || errors.Is(err, ErrIdentityNotFound)
		},
		ContextEnricher: func(c context.Context, identity identityware.Identity) context.Context {
			return WithIdentityContext(c, identity)
		},
		OnResolution: func(ctx router.Context, res identityware.Resolution) {
			if !res.Authenticated() {
				logger.Debug("anonymous request", "reason", res.Reason, "path", ctx.OriginalURL())
			}
		},
	})
}

// gateValidator adapts the TokenService to the gate's validator surface
type gateValidator struct {
	service TokenService
}

func (g gateValidator) Validate(tokenString string) (identityware.AuthClaims, error) {
	claims, err := g.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	gc, ok := claims.(identityware.AuthClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return gc, nil
}

// gateResolver adapts the Authenticator to the gate's resolver surface
type gateResolver struct {
	auth *Auther
}

func (g gateResolver) Resolve(ctx context.Context, subject string) (identityware.Identity, error) {
	identity, err := g.auth.provider.FindIdentityByIdentifier(ctx, subject)
	if err != nil {
		return nil, err
	}

	gi, ok := identity.(identityware.Identity)
	if !ok {
		return nil, ErrIdentityNotFound
	}

	return gi, nil
}

// RequireAuthenticated rejects requests that did not resolve to a known
// account. Pair it with the IdentityGate mounted upstream.
func RequireAuthenticated(contextKey string, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := RouterIdentity(ctx, contextKey); !ok {
				res, _ := RouterResolution(ctx, contextKey)
				logger.Debug("rejecting anonymous request", "reason", res.Reason, "path", ctx.OriginalURL())
				return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
					Message: "authentication required",
				})
			}
			return hf(ctx)
		}
	}
}

// RequireAdmin rejects authenticated requests from non admin accounts
func RequireAdmin(contextKey string, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			identity, ok := RouterIdentity(ctx, contextKey)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
					Message: "authentication required",
				})
			}

			if !identity.IsAdmin() {
				logger.Debug("rejecting non admin request", "user_id", identity.ID(), "path", ctx.OriginalURL())
				return ctx.JSON(http.StatusForbidden, ErrorResponse{
					Message: "admin access required",
				})
			}

			return hf(ctx)
		}
	}
}
