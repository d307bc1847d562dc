package identity

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserStore is the minimal read surface the identity provider needs. The full
// repository implements it.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// UserProvider resolves identities from the user store
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider creates an IdentityProvider backed by the user store.
func NewUserProvider(store UserStore, logger Logger) *UserProvider {
	if logger == nil {
		logger = defLogger{}
	}
	return &UserProvider{
		store:  store,
		logger: logger,
	}
}

// VerifyIdentity checks the given credentials against the stored password
// hash. A missing user, a disabled user with wrong password, or a hash
// mismatch all collapse into ErrInvalidCredentials so login failures do not
// leak which part was wrong. A disabled user with correct credentials gets
// ErrIdentityDisabled.
func (p *UserProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	user, err := p.store.GetByUsername(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			p.logger.Debug("VerifyIdentity no user for username %s", username)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user for login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		p.logger.Debug("VerifyIdentity password mismatch for username %s", username)
		return nil, ErrInvalidCredentials
	}

	if !user.IsEnabled() {
		return nil, ErrIdentityDisabled
	}

	return identityFromUser(user), nil
}

// FindIdentityByIdentifier re-resolves an identity from a token subject. Used
// on every authenticated request so tokens issued before a deactivation or
// deletion stop working immediately.
func (p *UserProvider) FindIdentityByIdentifier(ctx context.Context, username string) (Identity, error) {
	user, err := p.store.GetByUsername(ctx, username)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve identity")
	}

	if !user.IsEnabled() {
		return nil, ErrIdentityDisabled
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id       string
	username string
	email    string
	role     Role
	enabled  bool
}

func identityFromUser(user *User) *authIdentity {
	return &authIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
		role:     user.Role,
		enabled:  user.Active,
	}
}

func (a *authIdentity) ID() string       { return a.id }
func (a *authIdentity) Username() string { return a.username }
func (a *authIdentity) Email() string    { return a.email }
func (a *authIdentity) Role() Role       { return a.role }
func (a *authIdentity) Enabled() bool    { return a.enabled }

var _ EnabledAwareIdentity = (*authIdentity)(nil)
