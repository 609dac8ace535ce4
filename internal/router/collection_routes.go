package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/directory-admin/internal/apiclient"
	"github.com/iliyamo/directory-admin/internal/handler"
)

type crudRoutes interface {
	List(echo.Context) error
	Get(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

func registerCRUD(g *echo.Group, path string, h crudRoutes) {
	g.GET(path, h.List)
	g.POST(path, h.Create)
	g.GET(path+"/:id", h.Get)
	g.PATCH(path+"/:id", h.Update)
	g.PUT(path+"/:id", h.Update) // alias for clients that use PUT
	g.DELETE(path+"/:id", h.Delete)
}

// RegisterCollections registers one paginated CRUD table per upstream
// collection, plus the category trees, user status and company images.
func RegisterCollections(g *echo.Group, con *handler.Console) {
	// ---- Companies ----
	registerCRUD(g, "/companies", handler.NewCRUD(con, (*apiclient.Client).Companies))
	g.POST("/companies/:id/images", con.UploadImages)
	g.DELETE("/companies/:id/images/:imageId", con.DeleteImage)

	// ---- Categories ----
	g.GET("/categories/tree", handler.CategoryTree(con, (*apiclient.Client).Categories))
	registerCRUD(g, "/categories", handler.NewCRUD(con, (*apiclient.Client).Categories))
	g.GET("/resource-categories/tree", handler.CategoryTree(con, (*apiclient.Client).ResourceCategories))
	registerCRUD(g, "/resource-categories", handler.NewCRUD(con, (*apiclient.Client).ResourceCategories))

	// ---- Resources, floors, places, coupons ----
	registerCRUD(g, "/resources", handler.NewCRUD(con, (*apiclient.Client).Resources))
	registerCRUD(g, "/floors", handler.NewCRUD(con, (*apiclient.Client).Floors))
	registerCRUD(g, "/places", handler.NewCRUD(con, (*apiclient.Client).Places))
	registerCRUD(g, "/coupons", handler.NewCRUD(con, (*apiclient.Client).Coupons))

	// ---- Users ----
	registerCRUD(g, "/users", handler.NewCRUD(con, (*apiclient.Client).Users))
	g.PATCH("/users/:id/activate", con.SetUserActive(true))
	g.PATCH("/users/:id/deactivate", con.SetUserActive(false))
}

// RegisterSettings registers the admin preference endpoints.
func RegisterSettings(g *echo.Group, con *handler.Console) {
	g.GET("/settings", con.GetSettings)
	g.PATCH("/settings", con.PatchSettings)
	g.PUT("/settings", con.PutSettings)
	g.POST("/settings/save", con.SaveSettings)
	g.POST("/settings/reset", con.ResetSettings)
}
