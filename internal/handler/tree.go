package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/model"
)

// CategoryTree serves GET /v1/<categories>/tree: the flat collection
// arranged by parentId.
func CategoryTree(con *Console, collection func(*apiclient.Client) *apiclient.Collection[model.Category]) echo.HandlerFunc {
	return func(c echo.Context) error {
		col := collection(con.upstream(c))
		items, err := col.List(c.Request().Context())
		if err != nil {
			return con.fail(c, err, "Failed to load "+col.Plural())
		}
		return c.JSON(http.StatusOK, echo.Map{"items": model.BuildTree(items), "total": len(items)})
	}
}
