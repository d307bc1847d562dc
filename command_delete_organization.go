package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type DeleteOrganizationMessage struct {
	ID string `json:"id"`
}

func (e DeleteOrganizationMessage) Type() string { return "organization.delete" }

// DeleteOrganizationHandler soft-deletes an organization. The delete is
// refused while any live user still belongs to it.
type DeleteOrganizationHandler struct {
	repo RepositoryManager
}

func NewDeleteOrganizationHandler(repo RepositoryManager) *DeleteOrganizationHandler {
	return &DeleteOrganizationHandler{repo: repo}
}

func (h *DeleteOrganizationHandler) Execute(ctx context.Context, event DeleteOrganizationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during organization deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteOrganizationHandler) execute(ctx context.Context, event DeleteOrganizationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		id, err := parseEntityID(event.ID, "organization")
		if err != nil {
			return err
		}

		if _, err := h.repo.Organizations().FindByIDTx(ctx, tx, id); err != nil {
			if IsNotFound(err) {
				return NewNotFound("organization", event.ID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load organization")
		}

		inUse, err := h.repo.Organizations().HasActiveUsersTx(ctx, tx, id)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check organization members")
		}
		if inUse {
			return goerrors.New("organization still has users", goerrors.CategoryConflict).
				WithTextCode("ORGANIZATION_IN_USE").
				WithCode(goerrors.CodeBadRequest).
				WithMetadata(map[string]any{
					"id": event.ID,
				})
		}

		if err := h.repo.Organizations().SoftDeleteTx(ctx, tx, id); err != nil {
			if IsNotFound(err) {
				return NewNotFound("organization", event.ID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete organization")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "organization deletion transaction failed")
	}

	return nil
}
