package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evanshaw/resguard/internal/services"
	"github.com/evanshaw/resguard/pkg/errors"
	"github.com/evanshaw/resguard/pkg/response"
)

// GroupHandler exposes group and membership management.
type GroupHandler struct {
	svc *services.GroupService
}

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"omitempty,max=512"`
	CreatorID   string `json:"creator_id" validate:"required,max=256"`
}

type addMemberRequest struct {
	ActorID string `json:"actor_id" validate:"required,max=256"`
	UserID  string `json:"user_id" validate:"required,max=256"`
	Role    string `json:"role" validate:"omitempty,oneof=owner admin member"`
}

type updateMemberRoleRequest struct {
	ActorID string `json:"actor_id" validate:"required,max=256"`
	Role    string `json:"role" validate:"required,oneof=owner admin member"`
}

type removeMemberRequest struct {
	ActorID string `json:"actor_id" validate:"required,max=256"`
}

// NewGroupHandler wires the group service onto the shared database handle.
func NewGroupHandler(db *gorm.DB) (*GroupHandler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	svc, err := services.NewGroupService(db, audit)
	if err != nil {
		return nil, err
	}
	return &GroupHandler{svc: svc}, nil
}

// NewGroupHandlerWithService builds a handler around an existing service.
func NewGroupHandlerWithService(svc *services.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var body createGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.svc.Create(requestContext(c), services.CreateGroupInput{
		Name:        body.Name,
		Description: body.Description,
		CreatorID:   body.CreatorID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, group)
}

// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, groups)
}

// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, group)
}

// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	var body removeMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.Delete(requestContext(c), c.Param("id"), body.ActorID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	var body addMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.AddMember(requestContext(c), c.Param("id"), body.ActorID, body.UserID, body.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"added": true})
}

// PATCH /api/groups/:id/members/:userID
func (h *GroupHandler) UpdateMemberRole(c *gin.Context) {
	var body updateMemberRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.UpdateMemberRole(requestContext(c), c.Param("id"), body.ActorID, c.Param("userID"), body.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// DELETE /api/groups/:id/members/:userID
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	var body removeMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.svc.RemoveMember(requestContext(c), c.Param("id"), body.ActorID, c.Param("userID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// GET /api/groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.svc.ListMembers(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}
