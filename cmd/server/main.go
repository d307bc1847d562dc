package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"sort"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	identity "github.com/orderstack/go-identity"
)

type config struct {
	Addr            string `env:"ADDR" envDefault:":8080"`
	DatabaseDSN     string `env:"DATABASE_DSN" envDefault:"file:identity.db?cache=shared"`
	SigningSecret   string `env:"JWT_SIGNING_SECRET,required"`
	TokenExpiration int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	Issuer          string `env:"JWT_ISSUER" envDefault:"go-identity"`
	ContextKey      string `env:"AUTH_CONTEXT_KEY" envDefault:"identity"`
	AuthScheme      string `env:"AUTH_SCHEME" envDefault:"Bearer"`
	DefaultOrgName  string `env:"DEFAULT_ORGANIZATION" envDefault:"Default Organization"`
	AdminUsername   string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail      string `env:"ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword   string `env:"ADMIN_PASSWORD"`
	Debug           bool   `env:"DEBUG"`
}

func (c config) GetSigningKey() string    { return c.SigningSecret }
func (c config) GetSigningMethod() string { return "HS256" }
func (c config) GetContextKey() string    { return c.ContextKey }
func (c config) GetTokenExpiration() int  { return c.TokenExpiration }
func (c config) GetAuthScheme() string    { return c.AuthScheme }
func (c config) GetIssuer() string        { return c.Issuer }

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %s", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := runMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %s", err)
	}

	repo := identity.NewRepositoryManager(db)
	repo.MustValidate()

	defaultOrgID, err := seed(ctx, repo, cfg)
	if err != nil {
		log.Fatalf("seed: %s", err)
	}

	provider := identity.NewUserProvider(repo.Users(), nil)
	auther := identity.NewAuthenticator(provider, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return identity.WriteError(c, err)
		},
	})

	identity.RegisterRoutes(app, identity.RouterDeps{
		Repo:                  repo,
		Auther:                auther,
		TokenService:          identity.NewTokenService([]byte(cfg.SigningSecret), cfg.TokenExpiration, cfg.Issuer, nil),
		Provider:              provider,
		Config:                cfg,
		Debug:                 cfg.Debug,
		DefaultOrganizationID: defaultOrgID,
	})

	log.Fatal(app.Listen(cfg.Addr))
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	const dir = "data/sql/migrations"

	migrations := identity.GetMigrationsFS()

	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(migrations, dir+"/"+name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return err
		}
	}

	return nil
}

// seed makes sure the fallback organization exists and, when an admin
// password is configured, that an enabled ADMIN account exists too. Both are
// idempotent across restarts.
func seed(ctx context.Context, repo identity.RepositoryManager, cfg config) (string, error) {
	createOrg := identity.NewCreateOrganizationHandler(repo)
	if _, err := createOrg.Execute(ctx, identity.CreateOrganizationMessage{
		Name:        cfg.DefaultOrgName,
		Description: "fallback organization for self-service registration",
	}); err != nil && !identity.IsDuplicateKey(err) {
		return "", err
	}

	org, err := repo.Organizations().GetByName(ctx, cfg.DefaultOrgName)
	if err != nil {
		return "", err
	}

	if cfg.AdminPassword != "" {
		createUser := identity.NewCreateUserHandler(repo)
		if _, err := createUser.Execute(ctx, identity.CreateUserMessage{
			Username:       cfg.AdminUsername,
			Email:          cfg.AdminEmail,
			Password:       cfg.AdminPassword,
			FullName:       "Administrator",
			Role:           identity.RoleAdmin,
			OrganizationID: org.ID.String(),
		}); err != nil && !identity.IsDuplicateKey(err) {
			return "", err
		}
	}

	return org.ID.String(), nil
}
