// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/PA55ION/fyyur/internal/handler"
	"github.com/PA55ION/fyyur/internal/middleware"
	"github.com/PA55ION/fyyur/internal/service"
)

// Options carries everything the router needs.
type Options struct {
	DB          *sql.DB
	Query       *service.QueryService
	Mutate      *service.MutationService
	Log         *zap.Logger
	Limiter     *middleware.Limiter // nil disables rate limiting
	Registry    *prometheus.Registry
	MetricsPath string
}

// New builds the Echo server with every route registered.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(opts.Log)

	// HTML forms cannot send DELETE; honour _method=DELETE on POST.
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opts.Log))
	if opts.Registry != nil {
		e.Use(middleware.NewMetrics(opts.Registry).Middleware())
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, echo.WrapHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	e.Use(opts.Limiter.Middleware(opts.Log))

	d := handler.Deps{Query: opts.Query, Mutate: opts.Mutate, Log: opts.Log}
	RegisterRoutes(e, opts.DB,
		handler.NewVenueHandler(d),
		handler.NewArtistHandler(d),
		handler.NewShowHandler(d),
	)
	return e
}

// RegisterRoutes maps the directory routes.  Static paths such as
// /venues/create are matched before /venues/:id by Echo's router.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, v *handler.VenueHandler, a *handler.ArtistHandler, s *handler.ShowHandler) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/", s.Home)
	e.GET("/favicon.ico", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	e.GET("/venues", v.List)
	e.POST("/venues/search", v.Search)
	e.GET("/venues/create", v.CreateForm)
	e.POST("/venues/create", v.Create)
	e.GET("/venues/:id", v.Show)
	e.DELETE("/venues/:id", v.Delete)
	e.GET("/venues/:id/edit", v.EditForm)
	e.POST("/venues/:id/edit", v.Update)

	e.GET("/artists", a.List)
	e.POST("/artists/search", a.Search)
	e.GET("/artists/create", a.CreateForm)
	e.POST("/artists/create", a.Create)
	e.GET("/artists/:id", a.Show)
	e.DELETE("/artists/:id", a.Delete)
	e.GET("/artists/:id/edit", a.EditForm)
	e.POST("/artists/:id/edit", a.Update)

	e.GET("/shows", s.List)
	e.GET("/shows/create", s.CreateForm)
	e.POST("/shows/create", s.Create)
}
