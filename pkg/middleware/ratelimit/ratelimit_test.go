package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_PerKeyBurst(t *testing.T) {
	t.Parallel()

	l := New(0.001, 2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestAllow_SweepsIdleVisitors(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := New(1, 1)
	l.now = func() time.Time { return now }
	require.True(t, l.Allow("a"))

	now = now.Add(time.Hour)
	require.True(t, l.Allow("b"))
	_, ok := l.visitors["a"]
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	l := New(0.001, 1)
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
