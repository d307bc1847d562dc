package identity

import (
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ErrInvalidCredentials is the single failure returned for any bad login
// attempt. Unknown usernames and wrong passwords share it so callers cannot
// enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeBadRequest)

// ErrIdentityNotFound is returned when no live user matches an identifier.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrIdentityDisabled is returned when the backing user exists but its active
// flag is false. A disabled user cannot authenticate, even with a live token.
var ErrIdentityDisabled = errors.New("user account is disabled", errors.CategoryAuth).
	WithTextCode("ACCOUNT_DISABLED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token's expiry claim is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers unparsable tokens and bad signatures. Both fail
// closed into an unauthenticated request, never a crash.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrAuthenticationRequired is returned by the route guards when a request
// reaches a protected path without a resolved identity.
var ErrAuthenticationRequired = errors.New("authentication required", errors.CategoryAuthz).
	WithTextCode("AUTHENTICATION_REQUIRED").
	WithCode(errors.CodeForbidden)

// ErrNoEmptyPassword rejects empty plaintext before hashing.
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryBadInput).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// NewDuplicateKey reports a violated uniqueness invariant on the given field.
func NewDuplicateKey(field, value string) *errors.Error {
	return errors.New(fmt.Sprintf("%s already in use: %s", field, value), errors.CategoryConflict).
		WithTextCode("DUPLICATE_KEY").
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field": field,
			"value": value,
		})
}

// NewNotFound reports a missing or soft-deleted entity.
func NewNotFound(entity, identifier string) *errors.Error {
	return errors.New(fmt.Sprintf("%s not found: %s", entity, identifier), errors.CategoryNotFound).
		WithTextCode("NOT_FOUND").
		WithCode(errors.CodeNotFound).
		WithMetadata(map[string]any{
			"entity":     entity,
			"identifier": identifier,
		})
}

// IsDuplicateKey will check for uniqueness violations
func IsDuplicateKey(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryConflict
}

// IsNotFound will check for missing entity errors, including the record
// not-found errors surfaced by the repository layer.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err) || repository.IsRecordNotFound(err)
}
