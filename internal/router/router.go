// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and maps the function routes and
// system routes to their handlers.
package router

import (
	"github.com/deppfellow/app-functions/internal/config"
	"github.com/deppfellow/app-functions/internal/handler"
	"github.com/deppfellow/app-functions/internal/middleware"
	"github.com/deppfellow/app-functions/internal/server"
	"github.com/deppfellow/app-functions/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance. The profile routes are registered only
// when the process serves the "user" function.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
	)

	registerSystemRoutes(router, h)

	if s.Config.Primary.Serves(config.FunctionProfile) {
		registerProfileRoutes(router, h, middlewares)
	}

	return router
}

// registerProfileRoutes mounts the profile function at /user and /v1/user.
// Method dispatch runs before the rate limiter and auth.
func registerProfileRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	profile := handler.ByMethod(h.Profile.Routes(), m.RateLimit.Limit(), m.Auth.RequireAuth)

	r.Any("/user", profile)
	r.Group("/v1").Any("/user", profile)
}

