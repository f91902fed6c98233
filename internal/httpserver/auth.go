package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/cookie"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AuthHTTP struct {
	Svc        *service.AuthService
	CookieName string
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		l.Warn("register_failed", "error", err)
		return err
	}

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"user_id": user.ID,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		l.Warn("login_failed", "error", err)
		return err
	}

	c.SetCookie(cookie.Session(h.CookieName, res.Token, res.ExpiresAt))
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"role":    res.User.Role,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	c.SetCookie(cookie.Expired(h.CookieName))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "logged out"})
}

func (h *AuthHTTP) LoginTest(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "authenticated"})
}

func (h *AuthHTTP) GetRole(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"role": id.Role})
}

func (h *AuthHTTP) GetUsername(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.User(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"name": u.Name})
}

// GetProfilePic answers with a one-element list, the shape existing clients read.
func (h *AuthHTTP) GetProfilePic(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.User(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, []echo.Map{{"profile_pic": u.ProfilePic}})
}

// EditPassword changes the caller's password and ends the session.
func (h *AuthHTTP) EditPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_edit_password")

	id, err := caller(c)
	if err != nil {
		return err
	}
	var req transport.PasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("edit_password_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	if err := h.Svc.ChangePassword(ctx, id, id.UserID, req); err != nil {
		l.Warn("edit_password_failed", "error", err)
		return err
	}

	c.SetCookie(cookie.Expired(h.CookieName))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "password changed, please log in again"})
}
