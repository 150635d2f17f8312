package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evanshaw/resguard/internal/permissions"
	"github.com/evanshaw/resguard/internal/services"
	"github.com/evanshaw/resguard/pkg/response"
)

// PermissionHandler exposes resource ownership and permission operations.
type PermissionHandler struct {
	svc *services.ResourcePermissionService
}

type setOwnerRequest struct {
	ResourceType string  `json:"resource_type" validate:"required,max=128"`
	ResourceID   string  `json:"resource_id" validate:"required,max=256"`
	OwnerType    string  `json:"owner_type" validate:"required,oneof=user group"`
	OwnerID      string  `json:"owner_id" validate:"required,max=256"`
	ActorID      *string `json:"actor_id" validate:"omitempty,max=256"`
}

type setPermissionsRequest struct {
	ResourceType string  `json:"resource_type" validate:"required,max=128"`
	ResourceID   string  `json:"resource_id" validate:"required,max=256"`
	OwnerPerms   string  `json:"owner_perms" validate:"required,rwx"`
	GroupPerms   string  `json:"group_perms" validate:"required,rwx"`
	WorldPerms   string  `json:"world_perms" validate:"required,rwx"`
	UpdatedBy    *string `json:"updated_by" validate:"omitempty,max=256"`
}

type checkRequest struct {
	ResourceType string `json:"resource_type" validate:"required,max=128"`
	ResourceID   string `json:"resource_id" validate:"required,max=256"`
	UserID       string `json:"user_id" validate:"required,max=256"`
	Permission   string `json:"permission" validate:"required,oneof=read write execute"`
}

// NewPermissionHandler wires the permission engine and its collaborators onto
// the shared database handle.
func NewPermissionHandler(db *gorm.DB) (*PermissionHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	groups, err := services.NewGroupService(db, audit)
	if err != nil {
		return nil, err
	}
	store, err := permissions.NewStore(db)
	if err != nil {
		return nil, err
	}
	engine, err := permissions.NewEngine(store, store, groups)
	if err != nil {
		return nil, err
	}
	svc, err := services.NewResourcePermissionService(engine, audit)
	if err != nil {
		return nil, err
	}
	return &PermissionHandler{svc: svc}, nil
}

// NewPermissionHandlerWithService builds a handler around an existing service.
func NewPermissionHandlerWithService(svc *services.ResourcePermissionService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// POST /api/permissions/set-owner
func (h *PermissionHandler) SetOwner(c *gin.Context) {
	var body setOwnerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.svc.SetOwner(requestContext(c), services.SetOwnerInput{
		ResourceType: body.ResourceType,
		ResourceID:   body.ResourceID,
		OwnerType:    body.OwnerType,
		OwnerID:      body.OwnerID,
		ActorID:      body.ActorID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"registered": true})
}

// POST /api/permissions/set
func (h *PermissionHandler) SetPermissions(c *gin.Context) {
	var body setPermissionsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.svc.SetPermissions(requestContext(c), services.SetPermissionsInput{
		ResourceType: body.ResourceType,
		ResourceID:   body.ResourceID,
		OwnerPerms:   body.OwnerPerms,
		GroupPerms:   body.GroupPerms,
		WorldPerms:   body.WorldPerms,
		UpdatedBy:    body.UpdatedBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// GET /api/permissions/:type/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(requestContext(c), c.Param("type"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/permissions/check
func (h *PermissionHandler) Check(c *gin.Context) {
	var body checkRequest
	if !bindAndValidate(c, &body) {
		return
	}

	decision, err := h.svc.Check(requestContext(c), services.CheckInput{
		ResourceType: body.ResourceType,
		ResourceID:   body.ResourceID,
		UserID:       body.UserID,
		Permission:   body.Permission,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, decision)
}

// DELETE /api/permissions/:type/:id
func (h *PermissionHandler) Delete(c *gin.Context) {
	var actorID *string
	if actor := c.Query("actor_id"); actor != "" {
		actorID = &actor
	}

	if err := h.svc.Delete(requestContext(c), c.Param("type"), c.Param("id"), actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
