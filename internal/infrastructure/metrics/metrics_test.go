package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civistock/civistock-api/internal/infrastructure/metrics"
)

func TestMetrics_TransitionsExposed(t *testing.T) {
	m := metrics.New("civistock")
	m.Transition("AUTORIZAR_RETIRO", "ok")
	m.Transition("AUTORIZAR_RETIRO", "ok")
	m.Transition("RECHAZAR_DEVOLUCION", "rechazada")

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	_, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `civistock_movement_transitions_total{action="AUTORIZAR_RETIRO",outcome="ok"} 2`)
	assert.Contains(t, text, `civistock_movement_transitions_total{action="RECHAZAR_DEVOLUCION",outcome="rechazada"} 1`)
	assert.True(t, strings.Contains(text, `civistock_http_requests_total{method="GET",route="/ping",status="200"} 1`))
}
