package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/evanshaw/resguard/internal/models"
	apperrors "github.com/evanshaw/resguard/pkg/errors"
)

var (
	// ErrGroupNotFound indicates the requested group does not exist.
	ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Group not found", http.StatusNotFound)
	// ErrMemberExists signals the user is already a member of the group.
	ErrMemberExists = apperrors.New("GROUP_MEMBER_EXISTS", "User already belongs to group", http.StatusConflict)
	// ErrMemberNotFound indicates the requested membership does not exist.
	ErrMemberNotFound = apperrors.New("GROUP_MEMBER_NOT_FOUND", "User is not a member of the group", http.StatusNotFound)
	// ErrInvalidRole rejects roles outside owner/admin/member.
	ErrInvalidRole = apperrors.New("GROUP_ROLE_INVALID", "Role must be owner, admin or member", http.StatusBadRequest)
	// ErrRoleForbidden rejects management operations the actor's role does not permit.
	ErrRoleForbidden = apperrors.New("GROUP_ROLE_FORBIDDEN", "Actor role does not permit this operation", http.StatusForbidden)
	// ErrLastOwner protects the final owner of a group from removal or demotion.
	ErrLastOwner = apperrors.New("GROUP_LAST_OWNER", "A group must keep at least one owner", http.StatusConflict)
)

// CreateGroupInput captures new group metadata. The creator becomes the
// group's first owner-role member.
type CreateGroupInput struct {
	Name        string
	Description string
	CreatorID   string
}

// GroupService manages groups and their memberships. It is the
// group-management collaborator the permission engine queries (read-only)
// through its MembershipResolver port.
type GroupService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(db *gorm.DB, auditService *AuditService) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	return &GroupService{db: db, auditService: auditService}, nil
}

// Create registers a new group and seeds the creator as its owner.
func (s *GroupService) Create(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}
	creatorID := strings.TrimSpace(input.CreatorID)
	if creatorID == "" {
		return nil, apperrors.NewBadRequest("creator id is required")
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("group name already exists")
			}
			return fmt.Errorf("group service: create group: %w", err)
		}
		membership := models.GroupMembership{
			GroupID: group.ID,
			UserID:  creatorID,
			Role:    models.RoleOwner,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("group service: seed owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  &creatorID,
		Action:   "group.create",
		Resource: group.ID,
		Result:   "success",
		Metadata: map[string]any{"name": group.Name},
	})

	return group, nil
}

// GetByID loads a group together with its memberships.
func (s *GroupService) GetByID(ctx context.Context, groupID string) (*models.Group, error) {
	ctx = ensureContext(ctx)

	var group models.Group
	err := s.db.WithContext(ctx).Preload("Members").First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: load group: %w", err)
	}
	return &group, nil
}

// List returns all groups ordered by creation date.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	ctx = ensureContext(ctx)

	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}
	return groups, nil
}

// Delete removes a group and its memberships. Only an owner-role member may
// delete the group.
func (s *GroupService) Delete(ctx context.Context, groupID, actorID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireRole(ctx, groupID, actorID, models.RoleOwner); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.GroupMembership{}, "group_id = ?", groupID).Error; err != nil {
			return fmt.Errorf("group service: clear memberships: %w", err)
		}
		if err := tx.Delete(&models.Group{}, "id = ?", groupID).Error; err != nil {
			return fmt.Errorf("group service: delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  &actorID,
		Action:   "group.delete",
		Resource: groupID,
		Result:   "success",
	})
	return nil
}

// AddMember adds a user to the group with the given role. Owners and admins
// may add members; only owners may grant the owner role.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID, role string) error {
	ctx = ensureContext(ctx)

	role, err := normaliseRole(role)
	if err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewBadRequest("user id is required")
	}

	required := models.RoleAdmin
	if role == models.RoleOwner {
		required = models.RoleOwner
	}
	if err := s.requireRole(ctx, groupID, actorID, required); err != nil {
		return err
	}

	existing, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrMemberExists
	}

	membership := models.GroupMembership{GroupID: groupID, UserID: userID, Role: role}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrMemberExists
		}
		return fmt.Errorf("group service: add member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  &actorID,
		Action:   "group.member_add",
		Resource: groupID,
		Result:   "success",
		Metadata: map[string]any{"user_id": userID, "role": role},
	})
	return nil
}

// UpdateMemberRole changes an existing member's role. Only owners may change
// roles, and the last owner cannot be demoted.
func (s *GroupService) UpdateMemberRole(ctx context.Context, groupID, actorID, userID, role string) error {
	ctx = ensureContext(ctx)

	role, err := normaliseRole(role)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, groupID, actorID, models.RoleOwner); err != nil {
		return err
	}

	membership, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrMemberNotFound
	}
	if membership.Role == role {
		return nil
	}

	if membership.Role == models.RoleOwner {
		lastOwner, err := s.isLastOwner(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if lastOwner {
			return ErrLastOwner
		}
	}

	err = s.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role).Error
	if err != nil {
		return fmt.Errorf("group service: update member role: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  &actorID,
		Action:   "group.member_role",
		Resource: groupID,
		Result:   "success",
		Metadata: map[string]any{"user_id": userID, "role": role},
	})
	return nil
}

// RemoveMember removes a user from the group. Owners and admins may remove
// members, only owners may remove other owners, and the last owner stays.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, userID string) error {
	ctx = ensureContext(ctx)

	membership, err := s.membership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrMemberNotFound
	}

	required := models.RoleAdmin
	if membership.Role == models.RoleOwner {
		required = models.RoleOwner
	}
	if err := s.requireRole(ctx, groupID, actorID, required); err != nil {
		return err
	}

	if membership.Role == models.RoleOwner {
		lastOwner, err := s.isLastOwner(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if lastOwner {
			return ErrLastOwner
		}
	}

	err = s.db.WithContext(ctx).
		Delete(&models.GroupMembership{}, "group_id = ? AND user_id = ?", groupID, userID).Error
	if err != nil {
		return fmt.Errorf("group service: remove member: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  &actorID,
		Action:   "group.member_remove",
		Resource: groupID,
		Result:   "success",
		Metadata: map[string]any{"user_id": userID},
	})
	return nil
}

// ListMembers returns the group's memberships.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]models.GroupMembership, error) {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	var members []models.GroupMembership
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("group service: list members: %w", err)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the group with any role. This
// is the read-only query capability the permission engine consumes.
func (s *GroupService) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("group service: membership lookup: %w", err)
	}
	return count > 0, nil
}

func (s *GroupService) membership(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := s.db.WithContext(ctx).
		First(&membership, "group_id = ? AND user_id = ?", groupID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("group service: load membership: %w", err)
	}
	return &membership, nil
}

// requireRole verifies the group exists and the actor holds at least the
// required role. Role order: owner > admin > member.
func (s *GroupService) requireRole(ctx context.Context, groupID, actorID, required string) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return apperrors.NewBadRequest("actor id is required")
	}

	membership, err := s.membership(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrRoleForbidden
	}
	if roleRank(membership.Role) < roleRank(required) {
		return ErrRoleForbidden
	}
	return nil
}

func (s *GroupService) isLastOwner(ctx context.Context, groupID, userID string) (bool, error) {
	var others int64
	err := s.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND role = ? AND user_id <> ?", groupID, models.RoleOwner, userID).
		Count(&others).Error
	if err != nil {
		return false, fmt.Errorf("group service: count owners: %w", err)
	}
	return others == 0, nil
}

func normaliseRole(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleOwner:
		return models.RoleOwner, nil
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	case models.RoleMember, "":
		return models.RoleMember, nil
	}
	return "", ErrInvalidRole
}

func roleRank(role string) int {
	switch role {
	case models.RoleOwner:
		return 3
	case models.RoleAdmin:
		return 2
	case models.RoleMember:
		return 1
	}
	return 0
}
