package booking

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// UserController serves account lookups and deletion
type UserController struct {
	Logger     Logger
	Repo       RepositoryManager
	ContextKey string
}

func NewUserController(repo RepositoryManager, contextKey string, logger Logger) *UserController {
	if logger == nil {
		logger = defLogger{}
	}
	if contextKey == "" {
		contextKey = "user"
	}
	return &UserController{Logger: logger, Repo: repo, ContextKey: contextKey}
}

func RegisterUserRoutes(app RouteRegistrar, controller *UserController, authed router.MiddlewareFunc) {
	app.Get("/user/:id", controller.Get, authed)
	app.Delete("/user/:id", controller.Delete, authed)
}

func (c *UserController) Get(ctx router.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	record, err := c.Repo.Users().GetByID(ctx.Context(), id)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, record)
}

// Delete removes an account. Only the account owner or an admin may
// delete it, an authenticated stranger gets unauthorized rather than
// forbidden so the response does not confirm the account exists.
func (c *UserController) Delete(ctx router.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	record, err := c.Repo.Users().GetByID(ctx.Context(), id)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	identity, ok := RouterIdentity(ctx, c.ContextKey)
	if !ok || (identity.ID() != record.ID && !identity.IsAdmin()) {
		return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "authentication required",
		})
	}

	if err := c.Repo.Users().DeleteByID(ctx.Context(), id); err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, MessageResponse{Message: "Account deleted!"})
}
