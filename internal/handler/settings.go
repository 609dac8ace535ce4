package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/settings"
)

type settingsResp struct {
	Settings settings.Settings `json:"settings"`
	Dirty    bool              `json:"dirty"`
	Error    string            `json:"error,omitempty"`
}

type settingsPatch struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (h *Console) settingsStore(c echo.Context) (*settings.Store, error) {
	if h.Settings == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "settings are not configured")
	}
	return h.Settings.For(c.Request().Context(), scope(c))
}

// answerSettings reports the store state. A failed save keeps the edit in memory
// and is reported next to it.
func answerSettings(c echo.Context, st *settings.Store, err error) error {
	resp := settingsResp{Settings: st.Get(), Dirty: st.Dirty()}
	if err != nil {
		resp.Error = errText(err, "Failed to save settings")
		return c.JSON(errStatus(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSettings: GET /v1/settings
func (h *Console) GetSettings(c echo.Context) error {
	st, err := h.settingsStore(c)
	if err != nil {
		return h.fail(c, err, "Failed to load settings")
	}
	return answerSettings(c, st, nil)
}

// PatchSettings: PATCH /v1/settings with {"path":"notifications.email","value":false}
func (h *Console) PatchSettings(c echo.Context) error {
	var req settingsPatch
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "path is required"})
	}
	st, err := h.settingsStore(c)
	if err != nil {
		return h.fail(c, err, "Failed to load settings")
	}
	_, err = st.Update(c.Request().Context(), req.Path, req.Value)
	return answerSettings(c, st, err)
}

// PutSettings: PUT /v1/settings with the whole settings object.
func (h *Console) PutSettings(c echo.Context) error {
	st, err := h.settingsStore(c)
	if err != nil {
		return h.fail(c, err, "Failed to load settings")
	}
	next := st.Get()
	if err := c.Bind(&next); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	_, err = st.Replace(c.Request().Context(), next)
	return answerSettings(c, st, err)
}

// SaveSettings: POST /v1/settings/save
func (h *Console) SaveSettings(c echo.Context) error {
	st, err := h.settingsStore(c)
	if err != nil {
		return h.fail(c, err, "Failed to load settings")
	}
	return answerSettings(c, st, st.Save(c.Request().Context()))
}

// ResetSettings: POST /v1/settings/reset
func (h *Console) ResetSettings(c echo.Context) error {
	st, err := h.settingsStore(c)
	if err != nil {
		return h.fail(c, err, "Failed to load settings")
	}
	_, err = st.Reset(c.Request().Context())
	return answerSettings(c, st, err)
}
