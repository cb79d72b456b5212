package identityware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrTokenMissingOrInvalid = errors.New("missing or malformed token")
)

// Reason records why a request carries, or does not carry, an identity
type Reason string

const (
	ReasonAuthenticated  Reason = "authenticated"
	ReasonMissingToken   Reason = "missing_token"
	ReasonInvalidToken   Reason = "invalid_token"
	ReasonUnknownSubject Reason = "unknown_subject"
	ReasonResolverError  Reason = "resolver_error"
)

// Identity mirrors the identity surface of the parent package without
// importing it
type Identity interface {
	ID() int64
	Email() string
	FirstName() string
	LastName() string
	IsAdmin() bool
}

// AuthClaims mirrors the verified token claims of the parent package
type AuthClaims interface {
	Subject() string
	UserID() string
	Admin() bool
}

// TokenValidator validates raw tokens into structured claims
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// PrincipalResolver turns a verified token subject into a live identity
type PrincipalResolver interface {
	Resolve(ctx context.Context, subject string) (Identity, error)
}

// Resolution is the outcome of the gate for one request. It is published
// through OnResolution and mirrored into Locals as ContextKey and
// ContextKey + ":reason".
type Resolution struct {
	Identity Identity
	Reason   Reason
}

// Authenticated reports whether the request resolved to a known account
func (r Resolution) Authenticated() bool {
	return r.Identity != nil && r.Reason == ReasonAuthenticated
}

type Config struct {
	// Filter skips the gate entirely when it returns true
	Filter func(router.Context) bool

	SigningKey  SigningKey
	SigningKeys map[string]SigningKey
	JWKSetURLs  []string
	KeyFunc     jwt.Keyfunc

	ContextKey  string
	TokenLookup string
	AuthScheme  string

	// TokenValidator is required
	TokenValidator TokenValidator

	// PrincipalResolver is required. IsUnknownSubject classifies its
	// errors: matches become ReasonUnknownSubject, everything else is
	// ReasonResolverError.
	PrincipalResolver PrincipalResolver
	IsUnknownSubject  func(error) bool

	// ContextEnricher propagates the identity to the standard Go context
	ContextEnricher func(c context.Context, identity Identity) context.Context

	// OnResolution observes every outcome, authenticated or not
	OnResolution func(ctx router.Context, res Resolution)
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New builds the identity gate. The gate NEVER fails the pipeline: every
// request reaches the next handler, carrying either a resolved identity
// or the reason it stayed anonymous. Rejecting anonymous requests is the
// route guard's job, not the gate's.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if raw == "" || err != nil {
				return cfg.publish(ctx, Resolution{Reason: ReasonMissingToken})
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.publish(ctx, Resolution{Reason: ReasonInvalidToken})
			}

			identity, err := cfg.PrincipalResolver.Resolve(ctx.Context(), claims.Subject())
			if err != nil {
				reason := ReasonResolverError
				if cfg.IsUnknownSubject != nil && cfg.IsUnknownSubject(err) {
					reason = ReasonUnknownSubject
				}
				return cfg.publish(ctx, Resolution{Reason: reason})
			}

			if identity == nil {
				return cfg.publish(ctx, Resolution{Reason: ReasonUnknownSubject})
			}

			ctx.Locals(cfg.ContextKey, identity)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), identity))
			}

			return cfg.publish(ctx, Resolution{Identity: identity, Reason: ReasonAuthenticated})
		}
	}
}

func (cfg *Config) publish(ctx router.Context, res Resolution) error {
	ctx.Locals(cfg.ContextKey+":reason", string(res.Reason))

	if cfg.OnResolution != nil {
		cfg.OnResolution(ctx, res)
	}

	return ctx.Next()
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		if cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
			panic("AUTH: identity gate configuration: At least one of the following is required: TokenValidator, KeyFunc, JWKSetURLs, SigningKeys, or SigningKey.")
		}
	}

	if cfg.PrincipalResolver == nil {
		panic("AUTH: identity gate configuration: PrincipalResolver is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.KeyFunc == nil {
		if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}
			if len(cfg.JWKSetURLs) > 0 {
				var err error
				cfg.KeyFunc, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs)
				if err != nil {
					panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
				}
			} else {
				cfg.KeyFunc = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		} else if cfg.SigningKey.Key != nil {
			cfg.KeyFunc = signingKeyFunc(cfg.SigningKey)
		}
	}

	if cfg.TokenValidator == nil {
		cfg.TokenValidator = keyfuncValidator{keyFunc: cfg.KeyFunc}
	}

	return cfg
}

// keyfuncValidator is the fallback validator used when no TokenValidator
// is configured. It verifies signatures against the configured keys and
// exposes the registered claims only.
type keyfuncValidator struct {
	keyFunc jwt.Keyfunc
}

func (v keyfuncValidator) Validate(tokenString string) (AuthClaims, error) {
	token, err := jwt.Parse(tokenString, v.keyFunc)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrTokenMissingOrInvalid
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return nil, err
	}

	return registeredClaims{subject: subject}, nil
}

type registeredClaims struct {
	subject string
}

func (c registeredClaims) Subject() string { return c.subject }
func (c registeredClaims) UserID() string  { return c.subject }
func (c registeredClaims) Admin() bool     { return false }

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwtSetUrls []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwtSetUrls))
	for _, url := range jwtSetUrls {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts token from the request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			fmt.Println("[WARNING] Missing auth scheme in config definition")
			return "", ErrTokenMissingOrInvalid
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrInvalid
	}
}

// tokenFromQuery returns a function that extracts token from the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMissingOrInvalid
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts token from the url param string.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrTokenMissingOrInvalid
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts token from the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrInvalid
		}
		return token, nil
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}
