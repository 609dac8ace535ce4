package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/listview"
	"github.com/iliyamo/directory-admin/internal/model"
	q "github.com/iliyamo/directory-admin/internal/queue"
)

// SetUserActive serves PATCH /v1/users/:id/activate and /deactivate and
// answers the refreshed users page.
func (h *Console) SetUserActive(active bool) echo.HandlerFunc {
	action, fallback := q.ActionDeactivate, "Failed to deactivate user"
	if active {
		action, fallback = q.ActionActivate, "Failed to activate user"
	}
	return func(c echo.Context) error {
		id, ok := idParam(c, "id")
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		api := h.upstream(c)
		users := api.Users()
		l := listview.New[model.User](users.List, h.pageSize(c.Request().Context(), c), "Failed to load "+users.Plural())

		err := l.Mutate(c.Request().Context(), func(ctx context.Context) error {
			if active {
				return api.ActivateUser(ctx, id)
			}
			return api.DeactivateUser(ctx, id)
		})
		if err != nil {
			if l.State() == listview.StateFailed && !apiclient.IsUnauthorized(err) {
				return c.JSON(errStatus(err), listFailure[model.User]{Snapshot: l.Snapshot(), Error: l.Message()})
			}
			return h.fail(c, err, fallback)
		}
		h.record(c, action, users.Label(), id.String())
		l.SetPage(pageParam(c))
		return c.JSON(http.StatusOK, l.Snapshot())
	}
}
