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

func TestCreateOrganizationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active organization with unique name", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		repo.On("Organizations").Return(orgs)
		orgs.On("ExistsByNameTx", mock.Anything, mock.Anything, "Acme").Return(false, nil)
		orgs.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(o *identity.Organization) bool {
			return o.Name == "Acme" && o.Active
		}), mock.Anything).Return(&identity.Organization{
			ID:     uuid.New(),
			Name:   "Acme",
			Active: true,
		}, nil)

		handler := identity.NewCreateOrganizationHandler(&txRepositoryManager{repo})

		org, err := handler.Execute(ctx, identity.CreateOrganizationMessage{
			Name: "Acme",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Acme", org.Name)
		assert.True(t, org.Active)

		orgs.AssertExpectations(t)
	})

	t.Run("duplicate name fails with duplicate key", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		repo.On("Organizations").Return(orgs)
		orgs.On("ExistsByNameTx", mock.Anything, mock.Anything, "Acme").Return(true, nil)

		handler := identity.NewCreateOrganizationHandler(&txRepositoryManager{repo})

		org, err := handler.Execute(ctx, identity.CreateOrganizationMessage{
			Name: "Acme",
		})

		assert.Nil(t, org)
		assert.True(t, identity.IsDuplicateKey(err))
	})
}

func TestUpdateOrganizationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("renames when the new name is free", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		org := &identity.Organization{ID: uuid.New(), Name: "Acme", Active: true}

		repo.On("Organizations").Return(orgs)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, org.ID, mock.Anything).Return(org, nil)
		orgs.On("ExistsByNameTx", mock.Anything, mock.Anything, "Acme Corp").Return(false, nil)
		orgs.On("UpdateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(org, nil)

		handler := identity.NewUpdateOrganizationHandler(&txRepositoryManager{repo})

		updated, err := handler.Execute(ctx, identity.UpdateOrganizationMessage{
			ID:   org.ID.String(),
			Name: strPtr("Acme Corp"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "Acme Corp", updated.Name)
	})

	t.Run("keeping the current name skips the uniqueness check", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		org := &identity.Organization{ID: uuid.New(), Name: "Acme", Active: true}

		repo.On("Organizations").Return(orgs)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, org.ID, mock.Anything).Return(org, nil)
		orgs.On("UpdateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(org, nil)

		handler := identity.NewUpdateOrganizationHandler(&txRepositoryManager{repo})

		_, err := handler.Execute(ctx, identity.UpdateOrganizationMessage{
			ID:   org.ID.String(),
			Name: strPtr("Acme"),
		})

		assert.NoError(t, err)
		orgs.AssertNotCalled(t, "ExistsByNameTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("renaming to a taken name fails with duplicate key", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		org := &identity.Organization{ID: uuid.New(), Name: "Acme", Active: true}

		repo.On("Organizations").Return(orgs)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, org.ID, mock.Anything).Return(org, nil)
		orgs.On("ExistsByNameTx", mock.Anything, mock.Anything, "Taken").Return(true, nil)

		handler := identity.NewUpdateOrganizationHandler(&txRepositoryManager{repo})

		updated, err := handler.Execute(ctx, identity.UpdateOrganizationMessage{
			ID:   org.ID.String(),
			Name: strPtr("Taken"),
		})

		assert.Nil(t, updated)
		assert.True(t, identity.IsDuplicateKey(err))
	})
}

func TestDeleteOrganizationHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an empty organization", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		org := &identity.Organization{ID: uuid.New(), Name: "Acme", Active: true}

		repo.On("Organizations").Return(orgs)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, org.ID, mock.Anything).Return(org, nil)
		orgs.On("HasActiveUsersTx", mock.Anything, mock.Anything, org.ID).Return(false, nil)
		orgs.On("SoftDeleteTx", mock.Anything, mock.Anything, org.ID).Return(nil)

		handler := identity.NewDeleteOrganizationHandler(&txRepositoryManager{repo})

		err := handler.Execute(ctx, identity.DeleteOrganizationMessage{ID: org.ID.String()})

		assert.NoError(t, err)
		orgs.AssertExpectations(t)
	})

	t.Run("refuses while users still belong to it", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		org := &identity.Organization{ID: uuid.New(), Name: "Acme", Active: true}

		repo.On("Organizations").Return(orgs)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, org.ID, mock.Anything).Return(org, nil)
		orgs.On("HasActiveUsersTx", mock.Anything, mock.Anything, org.ID).Return(true, nil)

		handler := identity.NewDeleteOrganizationHandler(&txRepositoryManager{repo})

		err := handler.Execute(ctx, identity.DeleteOrganizationMessage{ID: org.ID.String()})

		assert.Error(t, err)
		assert.True(t, identity.IsDuplicateKey(err)) // conflict category
		orgs.AssertNotCalled(t, "SoftDeleteTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing organization fails with not found", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		orgs := &MockOrganizations{}

		id := uuid.New()

		repo.On("Organizations").Return(orgs)
		orgs.On("FindByIDTx", mock.Anything, mock.Anything, id, mock.Anything).
			Return(nil, repository.NewRecordNotFound())

		handler := identity.NewDeleteOrganizationHandler(&txRepositoryManager{repo})

		err := handler.Execute(ctx, identity.DeleteOrganizationMessage{ID: id.String()})

		assert.True(t, identity.IsNotFound(err))
	})
}
