package router // package router defines how HTTP routes are registered for the console

import (
	"log"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware

	"github.com/iliyamo/directory-admin/internal/handler"    // console handlers
	"github.com/iliyamo/directory-admin/internal/middleware" // session gate, role and rate limit
)

// Options tune route registration.
type Options struct {
	AdminRoles []string            // upstream roles allowed in; empty allows any
	LoginLimit echo.MiddlewareFunc // rate limiter in front of login; nil disables it
}

// New builds the Echo instance with recovery, request logging and every
// console route.
func New(con *handler.Console, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				log.Printf("http: method=%s uri=%s status=%d latency=%s ip=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP, v.Error)
				return nil
			}
			log.Printf("http: method=%s uri=%s status=%d latency=%s ip=%s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	}))

	RegisterRoutes(e, con)
	RegisterAuth(e, con, opts.LoginLimit)
	g := e.Group("/v1",
		middleware.SessionAuth(con.Sessions, con.LoginPath),
		middleware.RequireRole(opts.AdminRoles...),
	)
	g.GET("/me", con.Me)
	RegisterCollections(g, con)
	RegisterSettings(g, con)
	return e
}

// RegisterRoutes registers routes that need no session: liveness, upstream
// health and the public front-end config.
func RegisterRoutes(e *echo.Echo, con *handler.Console) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/health", con.UpstreamHealth)
	e.GET("/v1/config", con.PublicConfig)
}

// RegisterAuth registers login and logout.  Both run without the gate;
// logout clears whatever cookie it finds.
func RegisterAuth(e *echo.Echo, con *handler.Console, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limit != nil {
		g.POST("/login", con.Login, limit)
	} else {
		g.POST("/login", con.Login)
	}
	g.POST("/logout", con.Logout)
}
