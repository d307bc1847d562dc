package identity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// UserController serves the protected user management endpoints.
type UserController struct {
	Repo            RepositoryManager
	Creator         *CreateUserHandler
	Updater         *UpdateUserHandler
	PasswordChanger *ChangePasswordHandler
	Deleter         *DeleteUserHandler
	Logger          Logger
}

func NewUserController(repo RepositoryManager, logger Logger) *UserController {
	if logger == nil {
		logger = defLogger{}
	}
	return &UserController{
		Repo:            repo,
		Creator:         NewCreateUserHandler(repo),
		Updater:         NewUpdateUserHandler(repo),
		PasswordChanger: NewChangePasswordHandler(repo),
		Deleter:         NewDeleteUserHandler(repo),
		Logger:          logger,
	}
}

// UserResponse is the wire shape of a user. The password hash never leaves
// the service.
type UserResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name,omitempty"`
	Role           Role       `json:"role"`
	Active         bool       `json:"active"`
	OrganizationID string     `json:"organization_id"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           user.Role,
		Active:         user.Active,
		OrganizationID: user.OrganizationID.String(),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func toUserResponses(users []*User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	return out
}

// List returns all live users.
func (u *UserController) List(c *fiber.Ctx) error {
	users, err := u.Repo.Users().ListAll(c.UserContext())
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "", toUserResponses(users))
}

// Me returns the caller's own user record, resolved from the request
// identity.
func (u *UserController) Me(c *fiber.Ctx) error {
	identity, ok := IdentityFromContext(c.UserContext())
	if !ok {
		return WriteError(c, ErrIdentityNotFound)
	}

	user, err := u.Repo.Users().GetByUsername(c.UserContext(), identity.Username())
	if err != nil {
		if IsNotFound(err) {
			return WriteError(c, NewNotFound("user", identity.Username()))
		}
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "", toUserResponse(user))
}

// GetByID returns a single user.
func (u *UserController) GetByID(c *fiber.Ctx) error {
	id, err := parseEntityID(c.Params("id"), "user")
	if err != nil {
		return WriteError(c, err)
	}

	user, err := u.Repo.Users().FindByID(c.UserContext(), id)
	if err != nil {
		if IsNotFound(err) {
			return WriteError(c, NewNotFound("user", c.Params("id")))
		}
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "", toUserResponse(user))
}

type CreateUserRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 50),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
		validation.Field(
			&r.OrganizationID,
			validation.Required,
			is.UUID,
		),
	)
}

// Create creates a user with an explicit role and organization.
func (u *UserController) Create(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	user, err := u.Creator.Execute(c.UserContext(), CreateUserMessage{
		Username:       payload.Username,
		Email:          payload.Email,
		Password:       payload.Password,
		FullName:       payload.FullName,
		Role:           payload.Role,
		OrganizationID: payload.OrganizationID,
	})
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusCreated, "user created successfully", toUserResponse(user))
}

type UpdateUserRequest struct {
	Email          *string `json:"email"`
	FullName       *string `json:"full_name"`
	Role           *Role   `json:"role"`
	Active         *bool   `json:"active"`
	OrganizationID *string `json:"organization_id"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			is.Email,
		),
		validation.Field(
			&r.OrganizationID,
			is.UUID,
		),
	)
}

// Update applies a partial update, untouched fields keep their values.
func (u *UserController) Update(c *fiber.Ctx) error {
	payload := new(UpdateUserRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	user, err := u.Updater.Execute(c.UserContext(), UpdateUserMessage{
		ID:             c.Params("id"),
		Email:          payload.Email,
		FullName:       payload.FullName,
		Role:           payload.Role,
		Active:         payload.Active,
		OrganizationID: payload.OrganizationID,
	})
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "user updated successfully", toUserResponse(user))
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.NewPassword,
			validation.Required,
		),
	)
}

// ChangePassword re-hashes and stores a new password for the user.
func (u *UserController) ChangePassword(c *fiber.Ctx) error {
	payload := new(ChangePasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	if err := u.PasswordChanger.Execute(c.UserContext(), ChangePasswordMessage{
		ID:          c.Params("id"),
		NewPassword: payload.NewPassword,
	}); err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "password changed successfully", nil)
}

// Delete soft-deletes a user.
func (u *UserController) Delete(c *fiber.Ctx) error {
	if err := u.Deleter.Execute(c.UserContext(), DeleteUserMessage{
		ID: c.Params("id"),
	}); err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "user deleted successfully", nil)
}
