package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) RemoveUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_remove_user")

	id, err := caller(c)
	if err != nil {
		return err
	}
	var req transport.RemoveUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_user_error", "status", http.StatusBadRequest, "error", err)
		return invalidBody(err)
	}

	if err := h.Svc.RemoveUser(ctx, id, req.UserID); err != nil {
		l.Warn("remove_user_failed", "user_id", req.UserID, "error", err)
		return err
	}
	l.Info("remove_user_successful", "user_id", req.UserID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "user removed"})
}
