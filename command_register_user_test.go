package identity_test

import (
	"context"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	identity "github.com/orderstack/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("registers user with USER role in fallback organization", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		orgs := &MockOrganizations{}

		orgID := uuid.New()
		org := &identity.Organization{ID: orgID, Name: "Default Organization", Active: true}

		repo.On("Users").Return(users)
		repo.On("Organizations").Return(orgs)

		users.On("ExistsByUsernameTx", mock.Anything, mock.Anything, "jdoe").Return(false, nil)
		users.On("ExistsByEmailTx", mock.Anything, mock.Anything, "jdoe@example.com").Return(false, nil)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, orgID, mock.Anything).Return(org, nil)

		users.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
			return u.Username == "jdoe" &&
				u.Email == "jdoe@example.com" &&
				u.Role == identity.RoleUser &&
				u.Active &&
				u.OrganizationID == orgID &&
				u.PasswordHash != "" &&
				u.PasswordHash != "secret123"
		}), mock.Anything).Return(&identity.User{
			ID:             uuid.New(),
			Username:       "jdoe",
			Email:          "jdoe@example.com",
			Role:           identity.RoleUser,
			Active:         true,
			OrganizationID: orgID,
		}, nil)

		handler := identity.NewRegisterUserHandler(&txRepositoryManager{repo}, orgID.String())

		user, err := handler.Execute(ctx, identity.RegisterUserMessage{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Password: "secret123",
		})

		assert.NoError(t, err)
		assert.Equal(t, "jdoe", user.Username)
		assert.Equal(t, identity.RoleUser, user.Role)

		users.AssertExpectations(t)
		orgs.AssertExpectations(t)
	})

	t.Run("duplicate username fails with duplicate key", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		repo.On("Users").Return(users)
		users.On("ExistsByUsernameTx", mock.Anything, mock.Anything, "jdoe").Return(true, nil)

		handler := identity.NewRegisterUserHandler(&txRepositoryManager{repo}, uuid.NewString())

		user, err := handler.Execute(ctx, identity.RegisterUserMessage{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Password: "secret123",
		})

		assert.Nil(t, user)
		assert.True(t, identity.IsDuplicateKey(err))
	})

	t.Run("duplicate email fails with duplicate key", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		repo.On("Users").Return(users)
		users.On("ExistsByUsernameTx", mock.Anything, mock.Anything, "jdoe").Return(false, nil)
		users.On("ExistsByEmailTx", mock.Anything, mock.Anything, "jdoe@example.com").Return(true, nil)

		handler := identity.NewRegisterUserHandler(&txRepositoryManager{repo}, uuid.NewString())

		user, err := handler.Execute(ctx, identity.RegisterUserMessage{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Password: "secret123",
		})

		assert.Nil(t, user)
		assert.True(t, identity.IsDuplicateKey(err))
	})

	t.Run("missing organization fails with not found", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		orgs := &MockOrganizations{}

		orgID := uuid.New()

		repo.On("Users").Return(users)
		repo.On("Organizations").Return(orgs)

		users.On("ExistsByUsernameTx", mock.Anything, mock.Anything, "jdoe").Return(false, nil)
		users.On("ExistsByEmailTx", mock.Anything, mock.Anything, "jdoe@example.com").Return(false, nil)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, orgID, mock.Anything).
			Return(nil, repository.NewRecordNotFound())

		handler := identity.NewRegisterUserHandler(&txRepositoryManager{repo}, orgID.String())

		user, err := handler.Execute(ctx, identity.RegisterUserMessage{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Password: "secret123",
		})

		assert.Nil(t, user)
		assert.True(t, identity.IsNotFound(err))
	})

	t.Run("empty password fails validation", func(t *testing.T) {
		repo := &MockRepositoryManager{}

		handler := identity.NewRegisterUserHandler(&txRepositoryManager{repo}, uuid.NewString())

		user, err := handler.Execute(ctx, identity.RegisterUserMessage{
			Username: "jdoe",
			Email:    "jdoe@example.com",
		})

		assert.Nil(t, user)
		assert.Error(t, err)
	})

	t.Run("cancelled context aborts before any work", func(t *testing.T) {
		repo := &MockRepositoryManager{}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		handler := identity.NewRegisterUserHandler(&txRepositoryManager{repo}, uuid.NewString())

		user, err := handler.Execute(cancelled, identity.RegisterUserMessage{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Password: "secret123",
		})

		assert.Nil(t, user)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Users")
	})
}
