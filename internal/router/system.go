package router

import (
	"github.com/deppfellow/app-functions/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the routes every function process serves:
// health, docs UI and the embedded static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.StaticFS("/static", handler.StaticFS())
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
