// Package stubapi is a development stand-in for the remote FarmTrack API.
// It implements just enough of the mobile endpoints for the client to be
// exercised end to end without the real backend: envelope-style login,
// logout, and one authorized resource.
package stubapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/farmtrack/mobile-core/internal/config"
	"github.com/farmtrack/mobile-core/internal/model"
)

// Handler bundles dependencies for the stub endpoints.
type Handler struct {
	Cfg   config.ServerConfig
	Users *UserSet
}

func NewHandler(cfg config.ServerConfig, users *UserSet) *Handler {
	return &Handler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	User      model.User `json:"user"`
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresIn int64      `json:"expires_in"`
}

type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    *loginData `json:"data"`
}

// Login mirrors the production response shape: a success/message envelope
// carrying user, token, token_type and expires_in on success, and
// success:false with a message on bad credentials regardless of status.
func (h *Handler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "The given data was invalid."})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "The email and password fields are required."})
	}

	u, ok := h.Users.FindByEmail(req.Email)
	if !ok || !VerifyPassword(u.Hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, envelope{
			Success: false,
			Message: "Invalid login details",
		})
	}

	access, err := NewAccessToken(h.Cfg.JWTSecret, u.User.ID, u.User.PrimaryRole(), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "User logged in successfully",
		Data: &loginData{
			User:      u.User,
			Token:     access.Token,
			TokenType: "bearer",
			ExpiresIn: int64(time.Until(access.Exp).Seconds()),
		},
	})
}

// Logout acknowledges the sign-out. The stub keeps no token denylist; the
// client ignores the body either way.
func (h *Handler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User logged out successfully",
	})
}

// Animals returns a static herd for the caller's farm.
func (h *Handler) Animals(c echo.Context) error {
	now := time.Now().UTC()
	born := now.AddDate(-2, -3, 0)
	return c.JSON(http.StatusOK, echo.Map{"data": []model.Animal{
		{
			ID: 1, FarmID: 1, TagNumber: "GV-0042", Name: "Bella",
			Species: "cattle", Breed: "Holstein", Sex: "female",
			BirthDate: &born, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: 2, FarmID: 1, TagNumber: "GV-0057",
			Species: "sheep", Breed: "Merino", Sex: "male",
			CreatedAt: now, UpdatedAt: now,
		},
	}})
}

// Health reports liveness for anything that wants to wait on the stub.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
