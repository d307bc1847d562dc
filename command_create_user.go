package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type CreateUserMessage struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
}

func (e CreateUserMessage) Type() string { return "user.create" }

// CreateUserHandler handles administrative user creation. Unlike
// registration the caller picks the role and the organization.
type CreateUserHandler struct {
	repo RepositoryManager
}

func NewCreateUserHandler(repo RepositoryManager) *CreateUserHandler {
	return &CreateUserHandler{repo: repo}
}

func (h *CreateUserHandler) Execute(ctx context.Context, event CreateUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateUserHandler) execute(ctx context.Context, event CreateUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if event.Role != "" && !event.Role.IsValid() {
			return goerrors.New("invalid role: "+string(event.Role), goerrors.CategoryValidation).
				WithTextCode("INVALID_ROLE")
		}

		if taken, err := h.repo.Users().ExistsByUsernameTx(ctx, tx, event.Username); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username uniqueness")
		} else if taken {
			return NewDuplicateKey("username", event.Username)
		}

		if taken, err := h.repo.Users().ExistsByEmailTx(ctx, tx, event.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		} else if taken {
			return NewDuplicateKey("email", event.Email)
		}

		orgID, err := parseEntityID(event.OrganizationID, "organization")
		if err != nil {
			return err
		}

		org, err := h.repo.Organizations().FindByIDTx(ctx, tx, orgID)
		if err != nil {
			if IsNotFound(err) {
				return NewNotFound("organization", event.OrganizationID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve organization")
		}

		user.PasswordHash = hash
		user.Username = event.Username
		user.Email = event.Email
		user.FullName = event.FullName
		user.Role = event.Role
		user.Active = true
		user.OrganizationID = org.ID

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user creation transaction failed")
	}

	return user, nil
}
