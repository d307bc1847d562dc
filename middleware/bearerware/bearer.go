// Package bearerware provides a bearer token middleware for fiber. The
// middleware never rejects a request on its own: it attaches the resolved
// identity when the token is valid and otherwise lets the request continue
// anonymously. Route guards like RequireAuthenticated decide what an
// anonymous request may reach.
package bearerware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator validates raw tokens without importing the root package.
// This mirrors the TokenService.Validate method.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the claim surface the middleware needs, mirrored here to
// avoid an import cycle with the root package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
}

// Identity is the resolved principal attached to the request.
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// IdentityResolver re-resolves the identity behind validated claims. A
// resolver that fails (deleted or disabled user) leaves the request
// anonymous even though the token signature was fine.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims AuthClaims) (Identity, error)
}

// Logger is the minimal logging surface used by the middleware.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type Config struct {
	// Validator is required
	Validator TokenValidator
	// Resolver is required
	Resolver IdentityResolver
	// ContextKey is the locals key the identity is stored under. Claims are
	// stored under ContextKey + ":claims". Defaults to "identity".
	ContextKey string
	// AuthScheme defaults to "Bearer"
	AuthScheme string
	// Filter skips the middleware entirely when it returns true
	Filter func(*fiber.Ctx) bool
	// Logger is optional
	Logger Logger
	// ContextEnricher propagates claims and identity into the standard
	// context so non-fiber code can read them.
	ContextEnricher func(ctx context.Context, claims AuthClaims, identity Identity) context.Context
}

func (cfg *Config) claimsKey() string {
	return cfg.ContextKey + ":claims"
}

// ClaimsKey returns the locals key claims are stored under for a given
// identity context key.
func ClaimsKey(contextKey string) string {
	return contextKey + ":claims"
}

// New creates the authentication gate. Every failure mode, missing header,
// wrong scheme, invalid or expired token, unresolvable identity, results in
// the request proceeding without an identity.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, ok := tokenFromHeader(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if !ok {
			return c.Next()
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			cfg.Logger.Debug("bearerware token rejected: %s", err)
			return c.Next()
		}

		identity, err := cfg.Resolver.Resolve(c.UserContext(), claims)
		if err != nil {
			cfg.Logger.Debug("bearerware identity not resolved for subject %s: %s", claims.Subject(), err)
			return c.Next()
		}

		c.Locals(cfg.ContextKey, identity)
		c.Locals(cfg.claimsKey(), claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims, identity))
		}

		return c.Next()
	}
}

// RequireAuthenticated is the access guard for protected routes. Requests
// that reached it without a resolved identity are handed to onReject.
func RequireAuthenticated(contextKey string, onReject fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals(contextKey).(Identity); !ok {
			return onReject(c)
		}
		return c.Next()
	}
}

// RequireRole guards routes behind a role predicate. The check callback
// receives the resolved identity's role.
func RequireRole(contextKey string, check func(role string) bool, onReject fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := c.Locals(contextKey).(Identity)
		if !ok || !check(identity.Role()) {
			return onReject(c)
		}
		return c.Next()
	}
}

// IdentityFromLocals retrieves the resolved identity stored by the gate.
func IdentityFromLocals(c *fiber.Ctx, contextKey string) (Identity, bool) {
	identity, ok := c.Locals(contextKey).(Identity)
	return identity, ok
}

// ClaimsFromLocals retrieves the validated claims stored by the gate.
func ClaimsFromLocals(c *fiber.Ctx, contextKey string) (AuthClaims, bool) {
	claims, ok := c.Locals(ClaimsKey(contextKey)).(AuthClaims)
	return claims, ok
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("bearerware: Config.Validator is required")
	}

	if cfg.Resolver == nil {
		panic("bearerware: Config.Resolver is required")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "identity"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}

func tokenFromHeader(header, authScheme string) (string, bool) {
	if header == "" {
		return "", false
	}

	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		token := strings.TrimSpace(header[l:])
		if token != "" {
			return token, true
		}
	}

	return "", false
}

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Error(format string, args ...any) {}
