package middleware // middleware provides the console gate and request guards

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/directory-admin/internal/session"
)

// SessionCookie names the cookie carrying the signed console session token.
const SessionCookie = "admin_session"

// Context keys set by SessionAuth.
const (
    CtxSession = "session"
    CtxUserID  = "user_id"
    CtxRole    = "role"
)

// Resolver turns a raw session token into a live session.
type Resolver interface {
    Resolve(ctx context.Context, raw string) (session.Session, error)
}

// SessionAuth gates every protected route.  The token is read from the
// session cookie, falling back to a Bearer header.  Browsers without a
// session are redirected to loginPath; API callers get a 401 naming it.
func SessionAuth(r Resolver, loginPath string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            s, err := r.Resolve(c.Request().Context(), RawToken(c))
            if err != nil {
                if !errors.Is(err, session.ErrNoSession) {
                    log.Printf("session: resolve failed: %v", err)
                }
                return Unauthorized(c, loginPath)
            }
            c.Set(CtxSession, s)
            c.Set(CtxUserID, s.User.ID.String())
            c.Set(CtxRole, s.User.Role)
            return next(c)
        }
    }
}

// RawToken extracts the session token from the cookie or the Authorization
// header.
func RawToken(c echo.Context) string {
    if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
        return ck.Value
    }
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    return ""
}

// Unauthorized sends the caller back to the login page.
func Unauthorized(c echo.Context, loginPath string) error {
    if strings.Contains(c.Request().Header.Get("Accept"), "text/html") {
        return c.Redirect(http.StatusFound, loginPath)
    }
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "login": loginPath})
}

// CurrentSession returns the session stored by SessionAuth.
func CurrentSession(c echo.Context) (session.Session, bool) {
    s, ok := c.Get(CtxSession).(session.Session)
    return s, ok
}
