package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteLabel(t *testing.T) {
	t.Run("matched route returns template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/notes/:id", func(c *fiber.Ctx) error {
			assert.Equal(t, "/notes/:id", routeLabel(c))
			return c.SendString("ok")
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/notes/abc123", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route is folded", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			assert.Equal(t, unmatchedRoute, routeLabel(c))
			return c.SendStatus(404)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/nonexistent", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestStatusClass(t *testing.T) {
	for status, want := range map[int]string{200: "2xx", 201: "2xx", 404: "4xx", 503: "5xx", 304: "304"} {
		assert.Equal(t, want, statusClass(status), "status %d", status)
	}
}

func TestAttachMetricsSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "notesync_extra_total", Help: "test"})
	reg.MustRegister(extra)
	extra.Inc()

	app := fiber.New()
	AttachMetrics(app, reg)
	app.Get("/notes/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	_, err := app.Test(httptest.NewRequest("GET", "/notes/1", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "notesync_extra_total 1")
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/notes/:id",status="2xx"} 1`)

	_, err = app.Test(httptest.NewRequest("GET", "/no/such/route", nil))
	require.NoError(t, err)
	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `path="unmatched",status="4xx"`)
	assert.NotContains(t, string(body), "/no/such/route")
}
