package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type CreateOrganizationMessage struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (e CreateOrganizationMessage) Type() string { return "organization.create" }

// CreateOrganizationHandler creates an organization with a unique name.
type CreateOrganizationHandler struct {
	repo RepositoryManager
}

func NewCreateOrganizationHandler(repo RepositoryManager) *CreateOrganizationHandler {
	return &CreateOrganizationHandler{repo: repo}
}

func (h *CreateOrganizationHandler) Execute(ctx context.Context, event CreateOrganizationMessage) (*Organization, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during organization creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateOrganizationHandler) execute(ctx context.Context, event CreateOrganizationMessage) (*Organization, error) {
	org := &Organization{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if taken, err := h.repo.Organizations().ExistsByNameTx(ctx, tx, event.Name); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check name uniqueness")
		} else if taken {
			return NewDuplicateKey("name", event.Name)
		}

		org.Name = event.Name
		org.Description = event.Description
		org.Active = true

		var err error
		if org, err = h.repo.Organizations().CreateTx(ctx, tx, org); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create organization")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "organization creation transaction failed")
	}

	return org, nil
}
