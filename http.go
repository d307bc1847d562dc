package identity

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/orderstack/go-identity/middleware/bearerware"
)

// RouterDeps carries everything route registration needs.
type RouterDeps struct {
	Repo         RepositoryManager
	Auther       Authenticator
	TokenService TokenService
	Provider     IdentityProvider
	Config       Config
	Logger       Logger
	Debug        bool
	// DefaultOrganizationID is the fallback organization for self-service
	// registration.
	DefaultOrganizationID string
}

// RegisterRoutes mounts the authentication gate application-wide and wires
// the public and protected route groups. The gate itself never rejects, the
// /api group's guard produces the 403 envelope for anonymous requests.
func RegisterRoutes(app *fiber.App, deps RouterDeps) {
	logger := deps.Logger
	if logger == nil {
		logger = defLogger{}
	}

	contextKey := deps.Config.GetContextKey()

	gate := bearerware.New(bearerware.Config{
		Validator:  tokenValidator{service: deps.TokenService},
		Resolver:   providerResolver{provider: deps.Provider},
		ContextKey: contextKey,
		AuthScheme: deps.Config.GetAuthScheme(),
		Logger:     logger,
		ContextEnricher: func(ctx context.Context, claims bearerware.AuthClaims, identity bearerware.Identity) context.Context {
			if ca, ok := claims.(claimsAdapter); ok {
				ctx = WithClaimsContext(ctx, ca.claims)
			}
			if ia, ok := identity.(identityAdapter); ok {
				ctx = WithIdentityContext(ctx, ia.identity)
			}
			return ctx
		},
	})

	app.Use(gate)

	app.Get("/health", func(c *fiber.Ctx) error {
		return SuccessResponse(c, fiber.StatusOK, "", fiber.Map{
			"status": "ok",
		})
	})

	authController := NewAuthController(
		WithAuther(deps.Auther),
		WithRegistrar(NewRegisterUserHandler(deps.Repo, deps.DefaultOrganizationID)),
		WithControllerLogger(logger),
		WithDebug(deps.Debug),
	)

	auth := app.Group("/auth")
	auth.Post("/login", authController.LoginPost)
	auth.Post("/register", authController.RegisterPost)

	api := app.Group("/api", bearerware.RequireAuthenticated(contextKey, func(c *fiber.Ctx) error {
		return WriteError(c, ErrAuthenticationRequired)
	}))

	userController := NewUserController(deps.Repo, logger)

	users := api.Group("/users")
	users.Get("/", userController.List)
	users.Get("/me", userController.Me)
	users.Get("/:id", userController.GetByID)
	users.Post("/", userController.Create)
	users.Put("/:id", userController.Update)
	users.Put("/:id/password", userController.ChangePassword)
	users.Delete("/:id", userController.Delete)

	organizationController := NewOrganizationController(deps.Repo, logger)

	organizations := api.Group("/organizations")
	organizations.Get("/", organizationController.List)
	organizations.Get("/:id", organizationController.Get)
	organizations.Post("/", organizationController.Create)
	organizations.Put("/:id", organizationController.Update)
	organizations.Delete("/:id", organizationController.Delete)
}

// tokenValidator adapts the TokenService to the middleware's mirrored
// validator interface.
type tokenValidator struct {
	service TokenService
}

func (v tokenValidator) Validate(tokenString string) (bearerware.AuthClaims, error) {
	claims, err := v.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claimsAdapter{claims: claims}, nil
}

type claimsAdapter struct {
	claims AuthClaims
}

func (a claimsAdapter) Subject() string { return a.claims.Subject() }
func (a claimsAdapter) UserID() string  { return a.claims.UserID() }
func (a claimsAdapter) Role() string    { return string(a.claims.Role()) }

// providerResolver adapts the IdentityProvider to the middleware's mirrored
// resolver interface.
type providerResolver struct {
	provider IdentityProvider
}

func (r providerResolver) Resolve(ctx context.Context, claims bearerware.AuthClaims) (bearerware.Identity, error) {
	identity, err := r.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		return nil, err
	}
	return identityAdapter{identity: identity}, nil
}

type identityAdapter struct {
	identity Identity
}

func (a identityAdapter) ID() string       { return a.identity.ID() }
func (a identityAdapter) Username() string { return a.identity.Username() }
func (a identityAdapter) Email() string    { return a.identity.Email() }
func (a identityAdapter) Role() string     { return string(a.identity.Role()) }
