package middlewares

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests that hit no route, so probing random URLs
// cannot grow the label set.
const unmatchedRoute = "unmatched"

type httpMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	labels := []string{"method", "path", "status"}
	m := &httpMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, labels),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
	}
	reg.MustRegister(m.duration, m.total)
	return m
}

// handler renders chain errors itself so the recorded status is the one the
// client sees.
func (m *httpMetrics) handler(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	lv := []string{c.Method(), routeLabel(c), statusClass(c.Response().StatusCode())}
	m.duration.WithLabelValues(lv...).Observe(time.Since(start).Seconds())
	m.total.WithLabelValues(lv...).Inc()
	return nil
}

// routeLabel is the route template, e.g. /api/v1/notes/:id.
func routeLabel(c *fiber.Ctx) string {
	r := c.Route()
	if r == nil || r.Path == "" || (r.Path == "/" && c.Path() != "/") {
		return unmatchedRoute
	}
	return r.Path
}

// statusClass folds 2xx, 4xx and 5xx codes; anything else is kept verbatim.
func statusClass(status int) string {
	if status >= 200 && status < 600 && status/100 != 3 {
		return strconv.Itoa(status/100) + "xx"
	}
	return strconv.Itoa(status)
}

// AttachMetrics times every request into reg and serves reg on /metrics. The
// cache and mutation collectors are registered on the same reg by the caller.
func AttachMetrics(app *fiber.App, reg *prometheus.Registry) {
	app.Use(newHTTPMetrics(reg).handler)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
}
