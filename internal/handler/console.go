package handler // handler defines the console's http handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/middleware"
	"github.com/iliyamo/directory-admin/internal/model"
	"github.com/iliyamo/directory-admin/internal/service"
	"github.com/iliyamo/directory-admin/internal/session"
	"github.com/iliyamo/directory-admin/internal/settings"
)

// Console bundles what every console handler needs.
type Console struct {
	API          *apiclient.Client  // upstream client without a token
	Sessions     *session.Manager   // console sessions
	Settings     *settings.Registry // per-admin preferences; nil uses defaults
	Audit        *service.Recorder  // audit trail; nil disables it
	LoginPath    string             // where a lost session is sent
	CookieSecure bool               // Secure flag of the session cookie
	Compensate   bool               // undo partial image uploads
	MapAPIKey    string             // exposed through /v1/config
}

// NewConsole constructs a Console and panics if a required dependency is nil.
func NewConsole(api *apiclient.Client, sessions *session.Manager) *Console {
	if api == nil || sessions == nil {
		panic("nil dependency passed to NewConsole")
	}
	return &Console{API: api, Sessions: sessions, LoginPath: "/login"}
}

// upstream returns a client authenticated as the current admin.
func (h *Console) upstream(c echo.Context) *apiclient.Client {
	s, _ := middleware.CurrentSession(c)
	return h.API.WithToken(s.Token)
}

// scope names the preference scope of the current admin.
func scope(c echo.Context) string {
	s, _ := middleware.CurrentSession(c)
	if !s.User.ID.IsZero() {
		return s.User.ID.String()
	}
	return s.ID
}

// pageSize reads itemsPerPage from the admin's preferences.
func (h *Console) pageSize(ctx context.Context, c echo.Context) int {
	if h.Settings == nil {
		return settings.Defaults().ItemsPerPage
	}
	st, err := h.Settings.For(ctx, scope(c))
	if err != nil {
		log.Printf("settings: load scope=%s failed: %v", scope(c), err)
		return settings.Defaults().ItemsPerPage
	}
	return st.Get().ItemsPerPage
}

// pageParam parses ?page, defaulting to 1.
func pageParam(c echo.Context) int {
	p, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// idParam reads a path id; blank ids are rejected.
func idParam(c echo.Context, name string) (model.ID, bool) {
	id := model.ID(c.Param(name))
	return id, !id.IsZero()
}

// record publishes an audit event on behalf of the current admin.
func (h *Console) record(c echo.Context, action, entity, entityID string) {
	s, _ := middleware.CurrentSession(c)
	h.Audit.Record(c.Request().Context(), action, entity, entityID, s.User.ID.String(), s.User.Username)
}

// errStatus maps an error to the status the console answers with.
func errStatus(err error) int {
	var ve *model.ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, settings.ErrUnknownKey), errors.Is(err, settings.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, apiclient.ErrNetwork):
		return http.StatusBadGateway
	}
	if st := apiclient.StatusOf(err); st >= 400 {
		return st
	}
	return http.StatusInternalServerError
}

// errText is the user-facing message for err.
func errText(err error, fallback string) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) || errors.Is(err, settings.ErrUnknownKey) || errors.Is(err, settings.ErrInvalidValue) {
		return err.Error()
	}
	return apiclient.Describe(err, fallback)
}

// fail answers err.  An upstream 401 means the stored token is dead, so the
// console session is ended as well.
func (h *Console) fail(c echo.Context, err error, fallback string) error {
	if apiclient.IsUnauthorized(err) {
		h.endSession(c)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": errText(err, "unauthorized"), "login": h.LoginPath})
	}
	if errStatus(err) >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(errStatus(err), echo.Map{"error": errText(err, fallback)})
}

// endSession drops the stored session and clears the cookie.
func (h *Console) endSession(c echo.Context) {
	if s, ok := middleware.CurrentSession(c); ok {
		if err := h.Sessions.Logout(c.Request().Context(), s.ID); err != nil {
			log.Printf("session: logout %s failed: %v", s.ID, err)
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
