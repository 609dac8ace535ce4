package handler

import (
	"context"  // request-scoped timeouts
	"errors"   // sentinel comparison
	"net/http" // HTTP status codes and cookies
	"time"     // timeouts and expirations

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/directory-admin/internal/middleware" // session cookie and context helpers
	"github.com/iliyamo/directory-admin/internal/model"      // user profile
	q "github.com/iliyamo/directory-admin/internal/queue"     // audit actions
	"github.com/iliyamo/directory-admin/internal/session"    // console sessions
)

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	User    model.User `json:"user"`
	Token   string     `json:"token"`   // signed console session token
	Expires time.Time  `json:"expires"` // when the console session ends
}

// Login: exchange admin credentials upstream and open a console session.
func (h *Console) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	s, tok, err := h.Sessions.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrMissingCredentials) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		// upstream 401 here is a bad password, not a dead session
		return c.JSON(errStatus(err), echo.Map{"error": errText(err, "Login failed")})
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.Audit.Record(ctx, q.ActionLogin, "session", "", s.User.ID.String(), s.User.Username)

	return c.JSON(http.StatusOK, loginResp{User: s.User, Token: tok.Token, Expires: tok.Exp})
}

// Logout: drop the stored session if there is one and clear the cookie.
// Runs outside the gate so a stale cookie can always be cleared.
func (h *Console) Logout(c echo.Context) error {
	if s, err := h.Sessions.Resolve(c.Request().Context(), middleware.RawToken(c)); err == nil {
		c.Set(middleware.CtxSession, s)
		h.record(c, q.ActionLogout, "session", "")
	}
	h.endSession(c)
	return c.NoContent(http.StatusNoContent)
}

// Me: the current admin's profile, fresh from the upstream.
func (h *Console) Me(c echo.Context) error {
	u, err := h.upstream(c).Me(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, u)
}
