package middleware

// identity.go derives the caller identity used by the rate limiter.  Behind
// the gate that is the session's user id; on the login route it is the
// username posted in the body.

import (
    "bytes"
    "encoding/json"
    "io"
    "strings"

    "github.com/labstack/echo/v4"
)

const maxPeek = 4 << 10

// userID returns the authenticated user id, the posted login username, or
// "anon".
func userID(c echo.Context) string {
    if v, ok := c.Get(CtxUserID).(string); ok && v != "" {
        return v
    }
    if u := loginName(c); u != "" {
        return "login:" + strings.ToLower(u)
    }
    return "anon"
}

// loginName peeks at a JSON body for a username field and restores the
// body for the handler.
func loginName(c echo.Context) string {
    req := c.Request()
    if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        return ""
    }
    raw, err := io.ReadAll(io.LimitReader(req.Body, maxPeek))
    rest := req.Body
    req.Body = struct {
        io.Reader
        io.Closer
    }{io.MultiReader(bytes.NewReader(raw), rest), rest}
    if err != nil {
        return ""
    }
    var body struct {
        Username string `json:"username"`
    }
    if json.Unmarshal(raw, &body) != nil {
        return ""
    }
    return strings.TrimSpace(body.Username)
}
