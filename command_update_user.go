package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type UpdateUserMessage struct {
	ID             string  `json:"id"`
	Email          *string `json:"email"`
	FullName       *string `json:"full_name"`
	Role           *Role   `json:"role"`
	Active         *bool   `json:"active"`
	OrganizationID *string `json:"organization_id"`
}

func (e UpdateUserMessage) Type() string { return "user.update" }

// UpdateUserHandler applies a partial update to a user. Nil fields are left
// untouched. Username is immutable. The email uniqueness check is
// self-collision safe: keeping your own email is never a conflict.
type UpdateUserHandler struct {
	repo RepositoryManager
}

func NewUpdateUserHandler(repo RepositoryManager) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo}
}

func (h *UpdateUserHandler) Execute(ctx context.Context, event UpdateUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateUserHandler) execute(ctx context.Context, event UpdateUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		id, err := parseEntityID(event.ID, "user")
		if err != nil {
			return err
		}

		if user, err = h.repo.Users().FindByIDTx(ctx, tx, id); err != nil {
			if IsNotFound(err) {
				return NewNotFound("user", event.ID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
		}

		if event.Email != nil && *event.Email != user.Email {
			if taken, err := h.repo.Users().ExistsByEmailTx(ctx, tx, *event.Email); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
			} else if taken {
				return NewDuplicateKey("email", *event.Email)
			}
			user.Email = *event.Email
		}

		if event.FullName != nil {
			user.FullName = *event.FullName
		}

		if event.Role != nil {
			if !event.Role.IsValid() {
				return goerrors.New("invalid role: "+string(*event.Role), goerrors.CategoryValidation).
					WithTextCode("INVALID_ROLE")
			}
			user.Role = *event.Role
		}

		if event.OrganizationID != nil {
			orgID, err := parseEntityID(*event.OrganizationID, "organization")
			if err != nil {
				return err
			}
			org, err := h.repo.Organizations().FindByIDTx(ctx, tx, orgID)
			if err != nil {
				if IsNotFound(err) {
					return NewNotFound("organization", *event.OrganizationID)
				}
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve organization")
			}
			user.OrganizationID = org.ID
		}

		user.Touch()

		if _, err = h.repo.Users().UpdateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user")
		}

		// Deactivation goes through an explicit column set so a false value
		// survives the ORM's zero-value skip. Tokens issued before this stop
		// working on their next request.
		if event.Active != nil && *event.Active != user.Active {
			if err := h.repo.Users().SetActiveTx(ctx, tx, user.ID, *event.Active); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update active flag")
			}
			user.Active = *event.Active
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user update transaction failed")
	}

	return user, nil
}
