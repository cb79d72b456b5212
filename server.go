package booking

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// ServerDeps is everything the HTTP surface needs to run
type ServerDeps struct {
	Config Config
	Repo   RepositoryManager
	Logger Logger
	Debug  bool
}

// Server is the assembled HTTP application
type Server struct {
	srv    router.Server[*fiber.App]
	repo   RepositoryManager
	auther *Auther
	roster *RosterService
	logger Logger
}

// NewServer wires the full application: identity gate on the api group,
// guards per route, controllers on top.
func NewServer(deps ServerDeps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = defLogger{}
	}

	if err := deps.Repo.Validate(); err != nil {
		return nil, err
	}

	provider := NewUserProvider(deps.Repo.Users()).WithLogger(logger)
	auther := NewAuthenticator(provider, deps.Config).WithLogger(logger)
	roster := NewRosterService(deps.Repo.Sessions(), deps.Repo.Users()).WithLogger(logger)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	contextKey := deps.Config.GetContextKey()
	authed := RequireAuthenticated(contextKey, logger)
	admin := RequireAdmin(contextKey, logger)

	api := srv.Router().Group("/api")
	api.Use(IdentityGate(auther, deps.Config, logger))

	authController := NewAuthController(deps.Repo, auther,
		WithAuthLogger(logger),
		WithAuthDebug(deps.Debug),
	)
	RegisterAuthRoutes(api, authController)

	RegisterSessionRoutes(api, NewSessionController(deps.Repo, roster, logger), authed, admin)
	RegisterTeacherRoutes(api, NewTeacherController(deps.Repo, logger), authed)
	RegisterUserRoutes(api, NewUserController(deps.Repo, contextKey, logger), authed)

	return &Server{
		srv:    srv,
		repo:   deps.Repo,
		auther: auther,
		roster: roster,
		logger: logger,
	}, nil
}

// Serve blocks listening on the given address
func (s *Server) Serve(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.srv.Serve(addr)
}

// Router exposes the underlying router for additional mounts
func (s *Server) Router() router.Router[*fiber.App] {
	return s.srv.Router()
}

// Auther exposes the authenticator, mostly for tests and tooling
func (s *Server) Auther() *Auther {
	return s.auther
}

// Bootstrap opens the database, ensures the schema and returns a ready
// repository manager. Convenience for small deployments and tests.
func Bootstrap(ctx context.Context, dsn string) (RepositoryManager, error) {
	db, err := OpenDatabase(dsn)
	if err != nil {
		return nil, err
	}

	if err := CreateSchema(ctx, db); err != nil {
		return nil, err
	}

	repo := NewRepositoryManager(db)
	repo.MustValidate()

	return repo, nil
}
