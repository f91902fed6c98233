// Package csrf rejects cross-site state-changing requests. The session cookie
// is SameSite=None, so the browser-supplied Origin is the signal that remains.
package csrf

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

var ErrInvalidOrigin = echo.NewHTTPError(http.StatusForbidden, "invalid origin")

// OriginGuard lets unsafe methods through only when their Origin (or Referer)
// is the API's own host or one of allowed. Requests carrying neither header
// come from non-browser clients and pass.
func OriginGuard(allowed []string) echo.MiddlewareFunc {
	trusted := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if n := normalize(o); n != "" {
			trusted[n] = struct{}{}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if safeMethod(req.Method) {
				return next(c)
			}

			origin := req.Header.Get(echo.HeaderOrigin)
			if origin == "" {
				origin = req.Header.Get("Referer")
			}
			if origin == "" {
				return next(c)
			}

			n := normalize(origin)
			if _, ok := trusted[n]; ok || n == normalize(schemeOf(req)+"://"+req.Host) {
				return next(c)
			}

			logging.FromContext(req.Context()).Warn("origin_rejected",
				"status", http.StatusForbidden, "origin", origin)
			return ErrInvalidOrigin
		}
	}
}

func safeMethod(m string) bool {
	switch strings.ToUpper(m) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// normalize reduces a URL to lower-case scheme://host.
func normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get(echo.HeaderXForwardedProto); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
