package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStorageUnavailable marks faults of the backing store. It is the only
// error the engine propagates from a check; denials are Decision values.
var ErrStorageUnavailable = errors.New("permissions: storage unavailable")

// OwnerStore persists resource ownership records.
type OwnerStore interface {
	SaveOwner(ctx context.Context, resourceType, resourceID string, owner Owner) error
	GetOwner(ctx context.Context, resourceType, resourceID string) (*Owner, error)
	DeleteOwner(ctx context.Context, resourceType, resourceID string) error
}

// RecordStore persists rwx grant records.
type RecordStore interface {
	SaveRecord(ctx context.Context, rec Record) error
	GetRecord(ctx context.Context, resourceType, resourceID string) (*Record, error)
	DeleteRecord(ctx context.Context, resourceType, resourceID string) error
}

// MembershipResolver answers group membership queries. The engine only ever
// reads; group management belongs to a separate collaborator.
type MembershipResolver interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// Engine owns ownership and grant records and decides whether a principal
// may perform an action on a resource. It is stateless between calls; every
// decision is a pure function of the persisted records and the membership
// query.
type Engine struct {
	owners  OwnerStore
	records RecordStore
	members MembershipResolver
}

// NewEngine constructs the resolution engine from its storage ports.
func NewEngine(owners OwnerStore, records RecordStore, members MembershipResolver) (*Engine, error) {
	if owners == nil {
		return nil, errors.New("permissions: owner store is required")
	}
	if records == nil {
		return nil, errors.New("permissions: record store is required")
	}
	if members == nil {
		return nil, errors.New("permissions: membership resolver is required")
	}
	return &Engine{owners: owners, records: records, members: members}, nil
}

// SetOwner registers or replaces the owner of a resource. The referenced
// principal is not validated; resource registration is the caller's concern.
func (e *Engine) SetOwner(ctx context.Context, resourceType, resourceID string, owner Owner) error {
	if err := validateResourceKey(resourceType, resourceID); err != nil {
		return err
	}
	if err := owner.validate(); err != nil {
		return err
	}
	return e.owners.SaveOwner(ctx, resourceType, resourceID, owner)
}

// Owner returns the registered owner, or nil when the resource is unknown.
func (e *Engine) Owner(ctx context.Context, resourceType, resourceID string) (*Owner, error) {
	if err := validateResourceKey(resourceType, resourceID); err != nil {
		return nil, err
	}
	return e.owners.GetOwner(ctx, resourceType, resourceID)
}

// SetPermissions replaces the full grant record for a resource.
func (e *Engine) SetPermissions(ctx context.Context, resourceType, resourceID string, perms Triple, updatedBy *string) error {
	if err := validateResourceKey(resourceType, resourceID); err != nil {
		return err
	}
	return e.records.SaveRecord(ctx, Record{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Perms:        perms,
		UpdatedBy:    updatedBy,
	})
}

// Permissions returns the stored grant record, or nil when none was written.
// Callers needing the effective triple should fall back to DefaultPerms.
func (e *Engine) Permissions(ctx context.Context, resourceType, resourceID string) (*Record, error) {
	if err := validateResourceKey(resourceType, resourceID); err != nil {
		return nil, err
	}
	return e.records.GetRecord(ctx, resourceType, resourceID)
}

// DeleteResource removes both the owner and the grant record so that
// nothing outlives the underlying resource.
func (e *Engine) DeleteResource(ctx context.Context, resourceType, resourceID string) error {
	if err := validateResourceKey(resourceType, resourceID); err != nil {
		return err
	}
	if err := e.records.DeleteRecord(ctx, resourceType, resourceID); err != nil {
		return err
	}
	return e.owners.DeleteOwner(ctx, resourceType, resourceID)
}

// Check decides whether userID may perform perm on the resource, mirroring
// Unix file permission semantics:
//
//  1. no owner registered: deny, fail closed
//  2. user-owned and requester is the owner: decide on owner_perms alone,
//     never falling through to group or world
//  3. group-owned and requester is a member of the owning group: decide on
//     owner_perms (the requester *is* the owning principal)
//  4. otherwise: decide on world_perms
//
// This model tracks a single owner per resource, so a user-owned resource
// has no group association and group_perms never grants on its own.
func (e *Engine) Check(ctx context.Context, resourceType, resourceID, userID string, perm Permission) (Decision, error) {
	if err := validateResourceKey(resourceType, resourceID); err != nil {
		return Decision{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return Decision{}, errors.New("permissions: user id is required")
	}
	if !perm.valid() {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownPermission, perm)
	}

	owner, err := e.owners.GetOwner(ctx, resourceType, resourceID)
	if err != nil {
		return Decision{}, err
	}
	if owner == nil {
		return denied(ReasonNoOwner), nil
	}

	rec, err := e.records.GetRecord(ctx, resourceType, resourceID)
	if err != nil {
		return Decision{}, err
	}
	perms := DefaultPerms
	if rec != nil {
		perms = rec.Perms
	}

	switch owner.Type {
	case OwnerTypeUser:
		if owner.ID == userID {
			if perms.Owner.Has(perm) {
				return allowedBy(ViaOwner, perm), nil
			}
			return deniedByOwner(perm), nil
		}
	case OwnerTypeGroup:
		member, err := e.members.IsMember(ctx, owner.ID, userID)
		if err != nil {
			// The resolver failing is an infrastructure fault, not a denial.
			return Decision{}, fmt.Errorf("%w: membership lookup: %v", ErrStorageUnavailable, err)
		}
		if member {
			if perms.Owner.Has(perm) {
				return allowedBy(ViaOwner, perm), nil
			}
			return deniedByOwner(perm), nil
		}
	}

	if perms.World.Has(perm) {
		return allowedBy(ViaWorld, perm), nil
	}
	return denied(ReasonWorldDenied), nil
}

func validateResourceKey(resourceType, resourceID string) error {
	if strings.TrimSpace(resourceType) == "" {
		return errors.New("permissions: resource type is required")
	}
	if strings.TrimSpace(resourceID) == "" {
		return errors.New("permissions: resource id is required")
	}
	return nil
}
