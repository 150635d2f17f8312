package api

import (
	"github.com/gin-gonic/gin"

	"github.com/evanshaw/resguard/internal/handlers"
)

func registerPermissionRoutes(api *gin.RouterGroup, permHandler *handlers.PermissionHandler) {
	perms := api.Group("/permissions")
	{
		perms.POST("/set-owner", permHandler.SetOwner)
		perms.POST("/set", permHandler.SetPermissions)
		perms.POST("/check", permHandler.Check)
		perms.GET("/:type/:id", permHandler.Get)
		perms.DELETE("/:type/:id", permHandler.Delete)
	}
}
