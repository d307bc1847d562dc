package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type DeleteUserMessage struct {
	ID string `json:"id"`
}

func (e DeleteUserMessage) Type() string { return "user.delete" }

// DeleteUserHandler soft-deletes a user. The row keeps its data but is
// excluded from every lookup, so outstanding tokens die on their next
// request and the username and email become reusable.
type DeleteUserHandler struct {
	repo RepositoryManager
}

func NewDeleteUserHandler(repo RepositoryManager) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo}
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUserHandler) execute(ctx context.Context, event DeleteUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		id, err := parseEntityID(event.ID, "user")
		if err != nil {
			return err
		}

		if err := h.repo.Users().SoftDeleteTx(ctx, tx, id); err != nil {
			if IsNotFound(err) {
				return NewNotFound("user", event.ID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user deletion transaction failed")
	}

	return nil
}
