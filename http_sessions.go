package booking

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
)

// SessionController serves the session catalog and rosters
type SessionController struct {
	Logger Logger
	Repo   RepositoryManager
	Roster *RosterService
}

func NewSessionController(repo RepositoryManager, roster *RosterService, logger Logger) *SessionController {
	if logger == nil {
		logger = defLogger{}
	}
	return &SessionController{
		Logger: logger,
		Repo:   repo,
		Roster: roster,
	}
}

// RegisterSessionRoutes mounts the session endpoints behind the given
// guards. Reads and roster changes need authentication; create, update
// and delete are admin operations.
func RegisterSessionRoutes(app RouteRegistrar, controller *SessionController, authed, admin router.MiddlewareFunc) {
	app.Get("/session", controller.List, authed)
	app.Get("/session/:id", controller.Get, authed)
	app.Post("/session", controller.Create, authed, admin)
	app.Put("/session/:id", controller.Update, authed, admin)
	app.Delete("/session/:id", controller.Delete, authed, admin)

	app.Post("/session/:id/participate/:userId", controller.Participate, authed)
	app.Delete("/session/:id/participate/:userId", controller.Unparticipate, authed)
}

// SessionRequest is the create and update payload
type SessionRequest struct {
	Name        string    `form:"name" json:"name"`
	Description string    `form:"description" json:"description"`
	Date        time.Time `form:"date" json:"date"`
	TeacherID   int64     `form:"teacher_id" json:"teacher_id"`
}

// Validate will validate the payload
func (r SessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 2500)),
		validation.Field(&r.Date, validation.Required),
		validation.Field(&r.TeacherID, validation.Required),
	)
}

func (c *SessionController) List(ctx router.Context) error {
	records, err := c.Repo.Sessions().List(ctx.Context())
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (c *SessionController) Get(ctx router.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	record, err := c.Repo.Sessions().GetByID(ctx.Context(), id)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, record)
}

func (c *SessionController) Create(ctx router.Context) error {
	payload := new(SessionRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("session create parse payload", "error", err)
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "could not parse request body"})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	record := &Session{
		Name:        payload.Name,
		Description: payload.Description,
		Date:        payload.Date,
		TeacherID:   payload.TeacherID,
	}

	record, err := c.Repo.Sessions().Create(ctx.Context(), record)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, record)
}

func (c *SessionController) Update(ctx router.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	payload := new(SessionRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("session update parse payload", "error", err)
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: "could not parse request body"})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	record, err := c.Repo.Sessions().GetByID(ctx.Context(), id)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	record.Name = payload.Name
	record.Description = payload.Description
	record.Date = payload.Date
	record.TeacherID = payload.TeacherID

	record, err = c.Repo.Sessions().Update(ctx.Context(), record)
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, record)
}

func (c *SessionController) Delete(ctx router.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	if err := c.Repo.Sessions().DeleteByID(ctx.Context(), id); err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, MessageResponse{Message: "Session deleted!"})
}

func (c *SessionController) Participate(ctx router.Context) error {
	sessionID, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	userID, err := pathID(ctx, "userId")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	if err := c.Roster.Participate(ctx.Context(), sessionID, userID); err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, MessageResponse{Message: "Participation recorded!"})
}

func (c *SessionController) Unparticipate(ctx router.Context) error {
	sessionID, err := pathID(ctx, "id")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	userID, err := pathID(ctx, "userId")
	if err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	if err := c.Roster.Unparticipate(ctx.Context(), sessionID, userID); err != nil {
		return RenderError(ctx, err, c.Logger)
	}

	return ctx.JSON(router.StatusOK, MessageResponse{Message: "Participation removed!"})
}
