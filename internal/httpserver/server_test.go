package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

const cookieName = "auth_token"

var secret = []byte("http-test-secret")

type testServer struct {
	e      *echo.Echo
	db     *gorm.DB
	events *events.Recorder
	images *storage.ImageStore
	m      *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, ratelimit.New(1000, 1000))
}

func newTestServerWith(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	rec := &events.Recorder{}
	m := metrics.New("test")
	n := &service.Notifier{Events: rec, Metrics: m}
	images, err := storage.NewImageStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	log := logging.NewWithWriter(io.Discard, "debug")
	e := NewEcho(log, m, Options{CORSOrigins: []string{"http://localhost:5500"}, BodyLimit: "2M"})
	Register(e, &Deps{
		Auth: &AuthHTTP{
			Svc:        &service.AuthService{Repo: r, Secret: secret, TokenTTL: time.Hour, BcryptCost: 4, Notifier: n},
			CookieName: cookieName,
		},
		Catalog:     &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Search: &search.SQLSearcher{Repo: r}, Images: images, Notifier: n}},
		Cart:        &CartHTTP{Svc: &service.CartService{Repo: r, Notifier: n}},
		Orders:      &OrderHTTP{Svc: &service.OrderService{Repo: r, Notifier: n}},
		Admin:       &AdminHTTP{Svc: &service.AdminService{Repo: r, Notifier: n}},
		Gate:        middleware.NewGate(secret, cookieName),
		AuthLimiter: limiter,
		Metrics:     m,
		ImageDir:    images.Dir,
	})
	return &testServer{e: e, db: gdb, events: rec, images: images, m: m}
}

// do sends a JSON request, attaching the session cookie when one is given.
func (s *testServer) do(t *testing.T, method, path string, body any, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// login signs in an existing account and returns its session cookie.
func (s *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "psw": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			return &http.Cookie{Name: ck.Name, Value: ck.Value}
		}
	}
	t.Fatalf("no %s cookie in login response", cookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) upload(t *testing.T, body io.Reader, contentType string, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/addItem", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}
