package identity

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// AuthController serves the public authentication endpoints.
type AuthController struct {
	Auther    Authenticator
	Registrar *RegisterUserHandler
	Logger    Logger
	Debug     bool
}

type AuthControllerOption func(*AuthController)

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	controller := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(controller)
		}
	}

	return controller
}

func WithAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) {
		c.Auther = auther
	}
}

func WithRegistrar(handler *RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) {
		c.Registrar = handler
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) {
		c.Debug = debug
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// LoginPost exchanges credentials for a signed token. Every failure mode is
// the same generic invalid-credentials business error.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, identity, err := a.Auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "login successful", LoginResponse{
		Token:    token,
		Username: identity.Username(),
		Role:     identity.Role(),
	})
}

type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	OrganizationID string `json:"organization_id"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
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
			is.UUID,
		),
	)
}

// RegisterPost creates a new USER account. It returns a confirmation, not a
// token, the caller logs in separately.
func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	if a.Debug {
		fmt.Println("====== AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("===========================")
	}

	user, err := a.Registrar.Execute(c.UserContext(), RegisterUserMessage{
		Username:       payload.Username,
		Email:          payload.Email,
		Password:       payload.Password,
		FullName:       payload.FullName,
		OrganizationID: payload.OrganizationID,
	})
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusCreated, "user registered successfully", fiber.Map{
		"username": user.Username,
	})
}
