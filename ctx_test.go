package identity_test

import (
	"context"
	"testing"

	identity "github.com/orderstack/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips an identity", func(t *testing.T) {
		id := &MockIdentity{}
		ctx := identity.WithIdentityContext(ctx, id)

		got, ok := identity.IdentityFromContext(ctx)
		assert.True(t, ok)
		assert.Same(t, id, got)
	})

	t.Run("empty context has no identity", func(t *testing.T) {
		_, ok := identity.IdentityFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips claims", func(t *testing.T) {
		claims := &identity.JWTClaims{UID: "user-1"}
		ctx := identity.WithClaimsContext(ctx, claims)

		got, ok := identity.ClaimsFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "user-1", got.UserID())
	})

	t.Run("empty context has no claims", func(t *testing.T) {
		_, ok := identity.ClaimsFromContext(ctx)
		assert.False(t, ok)
	})
}
