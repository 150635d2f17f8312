package api

import (
	"github.com/gin-gonic/gin"

	"github.com/evanshaw/resguard/internal/handlers"
)

func registerGroupRoutes(api *gin.RouterGroup, groupHandler *handlers.GroupHandler) {
	groups := api.Group("/groups")
	{
		groups.GET("", groupHandler.List)
		groups.GET("/:id", groupHandler.Get)
		groups.POST("", groupHandler.Create)
		groups.DELETE("/:id", groupHandler.Delete)
		groups.GET("/:id/members", groupHandler.ListMembers)
		groups.POST("/:id/members", groupHandler.AddMember)
		groups.PATCH("/:id/members/:userID", groupHandler.UpdateMemberRole)
		groups.DELETE("/:id/members/:userID", groupHandler.RemoveMember)
	}
}
