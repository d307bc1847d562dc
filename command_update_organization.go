package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type UpdateOrganizationMessage struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (e UpdateOrganizationMessage) Type() string { return "organization.update" }

// UpdateOrganizationHandler applies a partial update to an organization. The
// name uniqueness check skips the organization's own current name.
type UpdateOrganizationHandler struct {
	repo RepositoryManager
}

func NewUpdateOrganizationHandler(repo RepositoryManager) *UpdateOrganizationHandler {
	return &UpdateOrganizationHandler{repo: repo}
}

func (h *UpdateOrganizationHandler) Execute(ctx context.Context, event UpdateOrganizationMessage) (*Organization, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during organization update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateOrganizationHandler) execute(ctx context.Context, event UpdateOrganizationMessage) (*Organization, error) {
	org := &Organization{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		id, err := parseEntityID(event.ID, "organization")
		if err != nil {
			return err
		}

		if org, err = h.repo.Organizations().FindByIDTx(ctx, tx, id); err != nil {
			if IsNotFound(err) {
				return NewNotFound("organization", event.ID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load organization")
		}

		if event.Name != nil && *event.Name != org.Name {
			if taken, err := h.repo.Organizations().ExistsByNameTx(ctx, tx, *event.Name); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check name uniqueness")
			} else if taken {
				return NewDuplicateKey("name", *event.Name)
			}
			org.Name = *event.Name
		}

		if event.Description != nil {
			org.Description = *event.Description
		}

		if event.Active != nil {
			org.Active = *event.Active
		}

		org.Touch()

		if _, err = h.repo.Organizations().UpdateTx(ctx, tx, org); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update organization")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "organization update transaction failed")
	}

	return org, nil
}
