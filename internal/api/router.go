package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evanshaw/resguard/internal/app"
	"github.com/evanshaw/resguard/internal/handlers"
	"github.com/evanshaw/resguard/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	registerHealthRoutes(r, db, cfg)
	registerMonitoringRoutes(r, cfg)

	api := r.Group("/api")

	permHandler, err := handlers.NewPermissionHandler(db)
	if err != nil {
		return nil, err
	}
	registerPermissionRoutes(api, permHandler)

	groupHandler, err := handlers.NewGroupHandler(db)
	if err != nil {
		return nil, err
	}
	registerGroupRoutes(api, groupHandler)

	auditHandler, err := handlers.NewAuditHandler(db)
	if err != nil {
		return nil, err
	}
	registerAuditRoutes(api, auditHandler)

	return r, nil
}
