package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/service"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type errorBody struct {
	Error string `json:"error"`
}

type validationBody struct {
	Errors []service.FieldError `json:"errors"`
}

// statusBySentinel is checked in order; the first match decides the status and
// the client-visible message.
var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrMissingParameter, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{middleware.ErrUnauthenticated, http.StatusForbidden},
	{middleware.ErrInvalidToken, http.StatusForbidden},
	{policy.ErrForbidden, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrCartNotFound, http.StatusNotFound},
	{service.ErrItemNotInCart, http.StatusNotFound},
	{service.ErrEmptyCart, http.StatusNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrDuplicateEmail, http.StatusConflict},
}

// ErrorHandler renders every error returned by a handler or middleware as JSON.
// Unknown errors become a bare 500 and are logged with their full text.
func ErrorHandler(base *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := classify(err)
		if code >= http.StatusInternalServerError {
			base.Error("unhandled_error", "status", code, "path", c.Path(), "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			base.Error("write_error_response", "error", werr)
		}
	}
}

func classify(err error) (int, any) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, validationBody{Errors: ve.Fields}
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code, errorBody{Error: s.err.Error()}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, errorBody{Error: msg}
	}

	return http.StatusInternalServerError, errorBody{Error: "internal server error"}
}
