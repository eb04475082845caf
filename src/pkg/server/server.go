/*
Package server exposes the task store and the report generator over HTTP.

Every /api route needs a bearer token and works on the owner named by the
X-Owner-ID header. Report downloads are streamed as attachments; previews are
HTML pages whose download links (/previews/<id>/<format>, no token needed)
render from the same snapshot.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	echomw "sima-reports/src/pkg/echo-middleware"
	"sima-reports/src/pkg/report"
	"sima-reports/src/pkg/store"
	"sima-reports/src/pkg/workspace"
)

type Options struct {
	Token          string
	DefaultOwnerID string
	Location       *time.Location
	RateLimit      int
	Burst          int
	BrotliLevel    int
	BodyLimit      string
}

// OptionsFromConfig reads the echo-middleware, store and report config sections.
func OptionsFromConfig(token string) Options {
	return Options{
		Token:          token,
		DefaultOwnerID: store.Cfg.OwnerID,
		Location:       report.Location(),
		RateLimit:      echomw.Cfg.MiddlewareRateLimit,
		Burst:          echomw.Cfg.MiddlewareBurst,
		BrotliLevel:    echomw.Cfg.BrotliLevel,
		BodyLimit:      echomw.Cfg.BodyLimit,
	}
}

type Server struct {
	echo      *echo.Echo
	store     store.Store
	generator *report.Generator
	location  *time.Location
}

type requestValidator struct {
	validate *validator.Validate
}

func (v requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func New(s store.Store, generator *report.Generator, options Options) *Server {
	if options.Location == nil {
		options.Location = time.Local
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = requestValidator{validate: validator.New()}

	server := &Server{echo: e, store: s, generator: generator, location: options.Location}

	e.Use(middleware.Recover())
	e.Use(echomw.RouteAccessLoggerMiddleware)
	if options.RateLimit > 0 {
		e.Use(echomw.NewRateLimiter(options.RateLimit, options.Burst).Middleware)
	}
	if options.BodyLimit != "" {
		e.Use(middleware.BodyLimit(options.BodyLimit))
	}
	if options.BrotliLevel > 0 {
		e.Use(echomw.Brotli(options.BrotliLevel))
	}

	e.GET("/health", server.health)
	// The preview's download links are followed by a browser without
	// credentials; the snapshot id is the credential.
	e.GET("/previews/:id/:format", server.sharedPreview)

	api := e.Group("/api", echomw.BearerToken(options.Token), echomw.OwnerScope(options.DefaultOwnerID))

	api.GET("/clients", server.listClients)
	api.POST("/clients", server.createClient)
	api.DELETE("/clients/:id", server.deleteClient)

	api.GET("/sites", server.listSites)
	api.POST("/sites", server.createSite)
	api.DELETE("/sites/:id", server.deleteSite)

	api.GET("/tasks", server.listTasks)
	api.GET("/tasks/pending", server.listPending)
	api.GET("/tasks/completed", server.listCompleted)
	api.GET("/tasks/completed/dates", server.completedDates)
	api.POST("/tasks", server.createTask)
	api.POST("/tasks/:id/complete", server.completeTask)
	api.DELETE("/tasks/:id", server.deleteTask)

	api.GET("/reports", server.generateReport)
	api.GET("/previews/:id/:format", server.renderPreview)

	return server
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	tl.Log(tl.Notice, palette.BlueBold, "Listening on '%s'", address)
	err := s.echo.Start(address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// workspace loads the requesting owner's records.
func (s *Server) workspace(c echo.Context) (*workspace.Workspace, error) {
	ws := workspace.New(s.store, echomw.OwnerID(c), s.location)
	return ws, ws.Load(c.Request().Context())
}

// storeError maps store errors to status codes with a user-facing message.
func storeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrAlreadyCompleted):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		tl.Log(tl.Error, palette.Red, "Request '%s' failed: %s", c.Path(), err.Error())
	}
	return c.JSON(status, map[string]string{"error": workspace.UserMessage(err)})
}

func badRequest(c echo.Context, err error) error {
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message = fmt.Sprint(httpErr.Message)
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// bindValid binds the request into target and runs its validate tags.
func bindValid(c echo.Context, target any) error {
	if err := c.Bind(target); err != nil {
		return err
	}
	return c.Validate(target)
}
