package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const identityKey = "identity"

var (
	ErrUnauthenticated = errors.New("no token provided")
	ErrInvalidToken    = errors.New("invalid token")
)

type Gate struct {
	Secret     []byte
	CookieName string
}

func NewGate(secret []byte, cookieName string) *Gate {
	return &Gate{Secret: secret, CookieName: cookieName}
}

// RequireAuth rejects the request before the handler runs unless it carries a
// valid session token, and stores the caller identity on the context.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth.gate")

		raw := g.tokenFrom(c)
		if raw == "" {
			l.Warn("auth_rejected", "status", http.StatusForbidden, "reason", "no token")
			return echo.NewHTTPError(http.StatusForbidden, ErrUnauthenticated.Error()).SetInternal(ErrUnauthenticated)
		}

		claims, err := tokens.Parse(raw, g.Secret)
		if err != nil {
			l.Warn("auth_rejected", "status", http.StatusForbidden, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusForbidden, ErrInvalidToken.Error()).SetInternal(ErrInvalidToken)
		}

		SetIdentity(c, policy.Identity{UserID: claims.UserID, Role: claims.Role})
		return next(c)
	}
}

func (g *Gate) tokenFrom(c echo.Context) string {
	if ck, err := c.Cookie(g.CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if v, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// RequireAction applies the resource-free policy check for action. It must run
// after RequireAuth.
func RequireAction(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, ErrUnauthenticated.Error()).SetInternal(ErrUnauthenticated)
			}
			if err := policy.Authorize(id, action, policy.Resource{}); err != nil {
				logging.FromContext(c.Request().Context()).Warn("policy_denied",
					"status", http.StatusForbidden, "action", action.String(), "user_id", id.UserID, "role", id.Role)
				return err
			}
			return next(c)
		}
	}
}

func SetIdentity(c echo.Context, id policy.Identity) {
	c.Set(identityKey, id)
	c.Set("user_id", id.UserID.String())
	c.Set("role", id.Role)
}

func IdentityFrom(c echo.Context) (policy.Identity, bool) {
	id, ok := c.Get(identityKey).(policy.Identity)
	return id, ok
}
