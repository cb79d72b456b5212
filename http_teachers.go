package booking

import (
	"github.com/goliatone/go-router"
)

// TeacherController serves the read-only teacher directory
type TeacherController struct {
	Logger Logger
	Repo   RepositoryManager
}

func NewTeacherController(repo RepositoryManager, logger Logger) *TeacherController {
	if logger == nil {
		logger = defLogger{}
	}
	return &TeacherController{Logger: logger, Repo: repo}
}

func RegisterTeacherRoutes(app RouteRegistrar, controller *TeacherController, authed router.MiddlewareFunc) {
	app.Get("/teacher", controller.List, authed)
	app.Get("/teacher/:id", controller.Get, authed)
}

func (c *TeacherController) List(ctx router.Context) error {
	records, err := c.Repo.Teachers().List(ctx.Context())
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (c *TeacherController) Get(ctx router.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	record, err := c.Repo.Teachers().GetByID(ctx.Context(), id)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, record)
}
