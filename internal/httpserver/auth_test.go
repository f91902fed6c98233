package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

func TestGate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/logintest", nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "no token provided", decode[errorBody](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/logintest", nil, &http.Cookie{Name: cookieName, Value: "garbage"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid token", decode[errorBody](t, rec).Error)

	testutil.SeedUser(t, s.db, "alice", "alice@example.com", "")
	session := s.login(t, "alice@example.com", "secret123")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/logintest", nil, session).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/getRole", nil)
	req.Header.Set("Authorization", "Bearer "+session.Value)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, policy.RoleCustomer, decode[map[string]string](t, rec)["role"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "alice", "email": "alice@example.com", "psw": "secret123"}

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/register", body, nil).Code)

	body["name"] = "mallory"
	rec := s.do(t, http.MethodPost, "/api/register", body, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already registered", decode[errorBody](t, rec).Error)

	var u models.User
	require.NoError(t, s.db.Where("email = ?", "alice@example.com").First(&u).Error)
	assert.Equal(t, "alice", u.Name)
}

func TestRegister_AggregatedValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "bad", "psw": "1"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[validationBody](t, rec).Errors, 3)
}

func TestLogin_Errors(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, "alice", "alice@example.com", "")

	rec := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "nobody@example.com", "psw": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "alice@example.com", "psw": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestProfileAndPassword(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, "alice", "alice@example.com", "")
	session := s.login(t, "alice@example.com", "secret123")

	rec := s.do(t, http.MethodGet, "/api/getUsername", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[map[string]string](t, rec)["name"])

	rec = s.do(t, http.MethodGet, "/api/getProfilePic", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]string](t, rec), 1)

	rec = s.do(t, http.MethodPut, "/api/editProfilePsw", map[string]string{"psw": "123"}, session)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/editProfilePsw", map[string]string{"psw": "brand-new"}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	s.login(t, "alice@example.com", "brand-new")

	rec = s.do(t, http.MethodPost, "/api/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServerWith(t, ratelimit.New(0.001, 1))
	body := map[string]string{"email": "x@example.com", "psw": "whatever"}

	first := s.do(t, http.MethodPost, "/api/login", body, nil)
	assert.Equal(t, http.StatusNotFound, first.Code)
	second := s.do(t, http.MethodPost, "/api/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// other routes are not limited
	for range 3 {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/getProducts", nil, nil).Code)
	}
}

func TestForeignOriginRejected(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedUser(t, s.db, "alice", "alice@example.com", "")

	body := strings.NewReader(`{"email":"alice@example.com","psw":"secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid origin", decode[errorBody](t, rec).Error)
	assert.Empty(t, rec.Result().Cookies())
}
