package identity

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	OrganizationID string `json:"organization_id"`
	UseHashid      bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler handles self-service registration. New accounts always
// get the USER role; the role cannot be chosen by the caller. When no
// organization id is given the account lands in the configured fallback
// organization.
type RegisterUserHandler struct {
	repo         RepositoryManager
	defaultOrgID string
}

func NewRegisterUserHandler(repo RepositoryManager, defaultOrgID string) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo, defaultOrgID: defaultOrgID}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
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

		username := getUsername(event.Username, event.Email)

		if taken, err := h.repo.Users().ExistsByUsernameTx(ctx, tx, username); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username uniqueness")
		} else if taken {
			return NewDuplicateKey("username", username)
		}

		if taken, err := h.repo.Users().ExistsByEmailTx(ctx, tx, event.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		} else if taken {
			return NewDuplicateKey("email", event.Email)
		}

		org, err := h.resolveOrganization(ctx, tx, event.OrganizationID)
		if err != nil {
			return err
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.FullName = event.FullName
		user.Username = username
		user.Role = RoleUser
		user.Active = true
		user.OrganizationID = org.ID
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

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

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	return user, nil
}

func (h *RegisterUserHandler) resolveOrganization(ctx context.Context, tx bun.IDB, rawID string) (*Organization, error) {
	if rawID == "" {
		rawID = h.defaultOrgID
	}

	id, err := parseEntityID(rawID, "organization")
	if err != nil {
		return nil, err
	}

	org, err := h.repo.Organizations().FindByIDTx(ctx, tx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, NewNotFound("organization", rawID)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve organization")
	}

	return org, nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
