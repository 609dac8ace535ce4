package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness probe used by load balancers.  It only proves the
// console process answers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// UpstreamHealth reports whether the platform backend answers its /health
// probe.  Unreachable or failing backends yield 503.
func (h *Console) UpstreamHealth(c echo.Context) error {
	if err := h.API.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down", "error": errText(err, "Backend unavailable")})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "up"})
}

// PublicConfig exposes the front-end settings that are safe to ship to the
// browser.
func (h *Console) PublicConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"mapApiKey": h.MapAPIKey,
		"loginPath": h.LoginPath,
	})
}
