package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var deadline time.Time
	var ok bool
	handler := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		deadline, ok = c.Request().Context().Deadline()
		return nil
	})

	require.NoError(t, handler(c))
	require.True(t, ok, "the request context must carry a deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestRequestTimeoutZeroIsPassThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestTimeout(0)(func(c echo.Context) error {
		_, ok := c.Request().Context().Deadline()
		assert.False(t, ok, "no deadline when the timeout is disabled")
		return nil
	})
	require.NoError(t, handler(c))
}
