package stubapi

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the stub endpoints onto the provided Echo instance.
// Login lives under /v1/auth/mobile and needs no token; logout and the
// resource endpoints sit behind the bearer middleware.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/healthz", Health)

	g := e.Group("/v1/auth")
	g.POST("/mobile/login", h.Login)
	g.POST("/logout", h.Logout, BearerAuth(h.Cfg.JWTSecret))

	auth := e.Group("/v1")
	auth.Use(BearerAuth(h.Cfg.JWTSecret))
	auth.GET("/animals", h.Animals)
}
