package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/policy"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// caller returns the identity stored by the auth gate.
func caller(c echo.Context) (policy.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return policy.Identity{}, echo.NewHTTPError(http.StatusForbidden, middleware.ErrUnauthenticated.Error()).
			SetInternal(middleware.ErrUnauthenticated)
	}
	return id, nil
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name).SetInternal(err)
	}
	return id, nil
}

func invalidBody(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
}
