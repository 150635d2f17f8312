package services

import (
	"context"
	"errors"
	"time"

	"github.com/evanshaw/resguard/internal/permissions"
	apperrors "github.com/evanshaw/resguard/pkg/errors"
	"github.com/evanshaw/resguard/pkg/metrics"
)

// ErrResourceNotFound is returned by Get when a resource was never registered.
var ErrResourceNotFound = apperrors.New("RESOURCE_NOT_FOUND", "No owner registered for resource", 404)

// SetOwnerInput registers or replaces a resource owner.
type SetOwnerInput struct {
	ResourceType string
	ResourceID   string
	OwnerType    string
	OwnerID      string
	ActorID      *string
}

// SetPermissionsInput replaces a resource's grant record using the textual
// 3-character rwx forms.
type SetPermissionsInput struct {
	ResourceType string
	ResourceID   string
	OwnerPerms   string
	GroupPerms   string
	WorldPerms   string
	UpdatedBy    *string
}

// CheckInput asks whether a user may perform a permission on a resource.
type CheckInput struct {
	ResourceType string
	ResourceID   string
	UserID       string
	Permission   string
}

// PermissionsView is the combined owner + permissions read model. When no
// grant record is stored the derived private-by-default triple is shown and
// Stored is false.
type PermissionsView struct {
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Owner        permissions.Owner `json:"owner"`
	OwnerPerms   string            `json:"owner_perms"`
	GroupPerms   string            `json:"group_perms"`
	WorldPerms   string            `json:"world_perms"`
	Stored       bool              `json:"stored"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
	UpdatedBy    *string           `json:"updated_by,omitempty"`
}

// ResourcePermissionService exposes the permission engine's operations with
// wire-level parsing, audit logging, and metrics.
type ResourcePermissionService struct {
	engine       *permissions.Engine
	auditService *AuditService
}

// NewResourcePermissionService constructs the service around an engine.
func NewResourcePermissionService(engine *permissions.Engine, audit *AuditService) (*ResourcePermissionService, error) {
	if engine == nil {
		return nil, errors.New("resource permission service: engine is required")
	}
	return &ResourcePermissionService{engine: engine, auditService: audit}, nil
}

// SetOwner registers or fully replaces the owner of a resource.
func (s *ResourcePermissionService) SetOwner(ctx context.Context, input SetOwnerInput) error {
	ctx = ensureContext(ctx)

	ownerType, err := permissions.ParseOwnerType(input.OwnerType)
	if err != nil {
		return apperrors.NewBadRequest(err.Error())
	}

	owner := permissions.Owner{Type: ownerType, ID: input.OwnerID}
	if err := s.engine.SetOwner(ctx, input.ResourceType, input.ResourceID, owner); err != nil {
		metrics.PermissionMutations.WithLabelValues("set_owner", "error").Inc()
		return mapEngineError(err)
	}
	metrics.PermissionMutations.WithLabelValues("set_owner", "success").Inc()

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  input.ActorID,
		Action:   "permission.set_owner",
		Resource: input.ResourceType + "/" + input.ResourceID,
		Result:   "success",
		Metadata: map[string]any{"owner_type": string(ownerType), "owner_id": input.OwnerID},
	})
	return nil
}

// SetPermissions replaces the full grant record. Malformed rwx strings are
// rejected before anything is written.
func (s *ResourcePermissionService) SetPermissions(ctx context.Context, input SetPermissionsInput) error {
	ctx = ensureContext(ctx)

	perms, err := parseTripleStrings(input.OwnerPerms, input.GroupPerms, input.WorldPerms)
	if err != nil {
		return apperrors.NewBadRequest(err.Error())
	}

	if err := s.engine.SetPermissions(ctx, input.ResourceType, input.ResourceID, perms, input.UpdatedBy); err != nil {
		metrics.PermissionMutations.WithLabelValues("set_permissions", "error").Inc()
		return mapEngineError(err)
	}
	metrics.PermissionMutations.WithLabelValues("set_permissions", "success").Inc()

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  input.UpdatedBy,
		Action:   "permission.set",
		Resource: input.ResourceType + "/" + input.ResourceID,
		Result:   "success",
		Metadata: map[string]any{
			"owner_perms": perms.Owner.String(),
			"group_perms": perms.Group.String(),
			"world_perms": perms.World.String(),
		},
	})
	return nil
}

// Get returns the combined owner and permissions view for a resource.
func (s *ResourcePermissionService) Get(ctx context.Context, resourceType, resourceID string) (*PermissionsView, error) {
	ctx = ensureContext(ctx)

	owner, err := s.engine.Owner(ctx, resourceType, resourceID)
	if err != nil {
		return nil, mapEngineError(err)
	}
	if owner == nil {
		return nil, ErrResourceNotFound
	}

	view := &PermissionsView{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Owner:        *owner,
	}

	rec, err := s.engine.Permissions(ctx, resourceType, resourceID)
	if err != nil {
		return nil, mapEngineError(err)
	}
	perms := permissions.DefaultPerms
	if rec != nil {
		perms = rec.Perms
		view.Stored = true
		view.UpdatedAt = &rec.UpdatedAt
		view.UpdatedBy = rec.UpdatedBy
	}

	view.OwnerPerms = perms.Owner.String()
	view.GroupPerms = perms.Group.String()
	view.WorldPerms = perms.World.String()
	return view, nil
}

// Check runs the resolution algorithm and records the outcome. A denial is a
// successful call; only storage faults surface as errors.
func (s *ResourcePermissionService) Check(ctx context.Context, input CheckInput) (permissions.Decision, error) {
	ctx = ensureContext(ctx)

	perm, err := permissions.ParsePermission(input.Permission)
	if err != nil {
		return permissions.Decision{}, apperrors.NewBadRequest(err.Error())
	}

	decision, err := s.engine.Check(ctx, input.ResourceType, input.ResourceID, input.UserID, perm)
	if err != nil {
		metrics.PermissionChecks.WithLabelValues(input.ResourceType, "error").Inc()
		return permissions.Decision{}, mapEngineError(err)
	}

	result := "denied"
	if decision.Allowed {
		result = "allowed"
	}
	metrics.PermissionChecks.WithLabelValues(input.ResourceType, result).Inc()

	userID := input.UserID
	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  &userID,
		Action:   "permission.check",
		Resource: input.ResourceType + "/" + input.ResourceID,
		Result:   result,
		Metadata: map[string]any{
			"permission": perm.String(),
			"via":        string(decision.Via),
			"reason":     decision.Reason,
		},
	})
	return decision, nil
}

// Delete removes the owner and grant records for a deleted resource.
func (s *ResourcePermissionService) Delete(ctx context.Context, resourceType, resourceID string, actorID *string) error {
	ctx = ensureContext(ctx)

	if err := s.engine.DeleteResource(ctx, resourceType, resourceID); err != nil {
		metrics.PermissionMutations.WithLabelValues("delete", "error").Inc()
		return mapEngineError(err)
	}
	metrics.PermissionMutations.WithLabelValues("delete", "success").Inc()

	recordAudit(s.auditService, ctx, AuditEntry{
		ActorID:  actorID,
		Action:   "resource.delete",
		Resource: resourceType + "/" + resourceID,
		Result:   "success",
	})
	return nil
}

func parseTripleStrings(ownerPerms, groupPerms, worldPerms string) (permissions.Triple, error) {
	owner, err := permissions.ParseSet(ownerPerms)
	if err != nil {
		return permissions.Triple{}, err
	}
	group, err := permissions.ParseSet(groupPerms)
	if err != nil {
		return permissions.Triple{}, err
	}
	world, err := permissions.ParseSet(worldPerms)
	if err != nil {
		return permissions.Triple{}, err
	}
	return permissions.Triple{Owner: owner, Group: group, World: world}, nil
}

// mapEngineError converts engine faults into transport-level errors. Storage
// faults become 503s; anything else is an invalid request.
func mapEngineError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, permissions.ErrStorageUnavailable) {
		return apperrors.ErrStorageUnavailable.WithInternal(err)
	}
	return apperrors.NewBadRequest(err.Error())
}
