package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

// RequireRole lets through only sessions whose upstream role is one of
// roles.  An empty list allows any authenticated admin.  It must run after
// SessionAuth, which stores the role under CtxRole.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[strings.ToLower(r)] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if len(allowed) == 0 {
                return next(c)
            }
            role, _ := c.Get(CtxRole).(string)
            if !allowed[strings.ToLower(role)] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
