package identity

import (
	"context"
)

// Auther implements the Authenticator interface on top of an
// IdentityProvider and a TokenService.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator creates an Authenticator using the provider for credential
// checks and the config for token issuance.
func NewAuthenticator(provider IdentityProvider, cfg Config) *Auther {
	return &Auther{
		provider: provider,
		tokenService: NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			nil,
		),
		logger: defLogger{},
	}
}

// WithLogger sets the logger, returns the instance for chaining.
func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithTokenService replaces the token service, returns the instance for
// chaining.
func (a *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		a.tokenService = ts
	}
	return a
}

// Login verifies the credentials and on success issues a signed token for the
// resolved identity.
func (a *Auther) Login(ctx context.Context, username, password string) (string, Identity, error) {
	identity, err := a.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		a.logger.Debug("Login failed for username %s", username)
		return "", nil, err
	}

	token, err := a.tokenService.Generate(identity)
	if err != nil {
		a.logger.Error("Login could not generate token: %s", err)
		return "", nil, err
	}

	return token, identity, nil
}

// ClaimsFromToken validates the raw token and returns its claims.
func (a *Auther) ClaimsFromToken(token string) (AuthClaims, error) {
	return a.tokenService.Validate(token)
}

// IdentityFromClaims resolves the current identity for a validated claim set.
func (a *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error) {
	return a.provider.FindIdentityByIdentifier(ctx, claims.Subject())
}

var _ Authenticator = (*Auther)(nil)
