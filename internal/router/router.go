// Package router wires the HTTP endpoints to their handlers. All API
// routes live under the /v1 prefix; /healthz and /metrics sit at the
// top level for probes and scrapers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ekazakov/violation-registry/internal/handler"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth       *handler.AuthHandler
	Owners     *handler.OwnerHandler
	Inspectors *handler.InspectorHandler
	Vehicles   *handler.VehicleHandler
	Violations *handler.ViolationHandler
	Protocols  *handler.ProtocolHandler
	Locks      *handler.LockHandler
	Reports    *handler.ReportHandler
}

// RegisterRoutes registers the operational endpoints: health for load
// balancers and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the login endpoint under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/v1/auth/login", a.Login)
}

// RegisterRegistry registers the record collections. Reads are open;
// every mutating route identifies its user in the body or query and is
// role-gated inside the handler. Each collection carries its own
// lock/unlock routes next to the generic /v1/lock/:entity/:id pair.
func RegisterRegistry(e *echo.Echo, h Handlers) {
	g := e.Group("/v1")

	g.GET("/owners", h.Owners.List)
	g.GET("/owners/:id", h.Owners.Get)
	g.POST("/owners", h.Owners.Create)
	g.PUT("/owners/:id", h.Owners.Update)
	g.POST("/owners/lock/:id", h.Locks.LockFor(handler.KindOwner))
	g.POST("/owners/unlock/:id", h.Locks.UnlockFor(handler.KindOwner))

	g.GET("/inspectors", h.Inspectors.List)
	g.GET("/inspectors/:id", h.Inspectors.Get)
	g.POST("/inspectors", h.Inspectors.Create)
	g.PUT("/inspectors/:id", h.Inspectors.Update)
	g.POST("/inspectors/lock/:id", h.Locks.LockFor(handler.KindInspector))
	g.POST("/inspectors/unlock/:id", h.Locks.UnlockFor(handler.KindInspector))

	// Static segments before :id so /vehicles/models does not parse as
	// a vehicle id.
	g.GET("/vehicles/models", h.Vehicles.ListModels)
	g.GET("/vehicles/colors", h.Vehicles.ListColors)
	g.GET("/vehicles", h.Vehicles.List)
	g.GET("/vehicles/:id", h.Vehicles.Get)
	g.POST("/vehicles", h.Vehicles.Create)
	g.PUT("/vehicles/:id", h.Vehicles.Update)
	g.DELETE("/vehicles/:id", h.Vehicles.Delete)
	g.POST("/vehicles/lock/:id", h.Locks.LockFor(handler.KindVehicle))
	g.POST("/vehicles/unlock/:id", h.Locks.UnlockFor(handler.KindVehicle))

	g.GET("/violations/types", h.Violations.ListTypes)
	g.GET("/violations/articles", h.Violations.ListArticles)
	g.GET("/violations", h.Violations.List)
	g.GET("/violations/:id", h.Violations.Get)
	g.POST("/violations", h.Violations.Create)
	g.PUT("/violations/:id", h.Violations.Update)
	g.POST("/violations/lock/:id", h.Locks.LockFor(handler.KindViolation))
	g.POST("/violations/unlock/:id", h.Locks.UnlockFor(handler.KindViolation))

	g.GET("/protocols", h.Protocols.List)
	g.GET("/protocols/:id", h.Protocols.Get)
	g.POST("/protocols", h.Protocols.Create)
	g.PUT("/protocols/:id", h.Protocols.Update)
	g.POST("/protocols/lock/:id", h.Locks.LockFor(handler.KindProtocol))
	g.POST("/protocols/unlock/:id", h.Locks.UnlockFor(handler.KindProtocol))

	// Generic lock routes cover the reference tables too.
	g.POST("/lock/:entity/:id", h.Locks.Lock)
	g.POST("/unlock/:entity/:id", h.Locks.Unlock)
}

// RegisterReports registers the read-only reports. The optional cache
// middleware holds responses in Redis.
func RegisterReports(e *echo.Echo, r *handler.ReportHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/reports")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/inspectors", r.Inspectors)
	g.GET("/owners", r.Owners)
	g.GET("/violations", r.Violations)
}
