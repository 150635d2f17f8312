package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evanshaw/resguard/internal/models"
)

// Store is the gorm-backed implementation of the OwnerStore and RecordStore
// ports. Writes are single-statement upserts on the composite key, so a
// concurrent reader never observes a half-written record.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store on the provided database handle.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("permissions: db is required")
	}
	return &Store{db: db}, nil
}

var resourceKeyColumns = []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}}

// SaveOwner inserts or fully replaces the owner row for a resource.
func (s *Store) SaveOwner(ctx context.Context, resourceType, resourceID string, owner Owner) error {
	row := models.ResourceOwner{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OwnerType:    string(owner.Type),
		OwnerID:      owner.ID,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   resourceKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"owner_type", "owner_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return storageFault("save owner", err)
	}
	return nil
}

// GetOwner loads the owner row, returning nil (not an error) when unset.
func (s *Store) GetOwner(ctx context.Context, resourceType, resourceID string) (*Owner, error) {
	var row models.ResourceOwner
	err := s.db.WithContext(ctx).
		First(&row, "resource_type = ? AND resource_id = ?", resourceType, resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageFault("load owner", err)
	}

	ownerType, err := ParseOwnerType(row.OwnerType)
	if err != nil {
		return nil, storageFault("load owner", err)
	}
	return &Owner{Type: ownerType, ID: row.OwnerID}, nil
}

// DeleteOwner removes the owner row; deleting an absent row is not an error.
func (s *Store) DeleteOwner(ctx context.Context, resourceType, resourceID string) error {
	err := s.db.WithContext(ctx).
		Delete(&models.ResourceOwner{}, "resource_type = ? AND resource_id = ?", resourceType, resourceID).Error
	if err != nil {
		return storageFault("delete owner", err)
	}
	return nil
}

// SaveRecord inserts or fully replaces the grant record for a resource.
func (s *Store) SaveRecord(ctx context.Context, rec Record) error {
	row := models.ResourcePermission{
		ResourceType: rec.ResourceType,
		ResourceID:   rec.ResourceID,
		OwnerPerms:   rec.Perms.Owner.String(),
		GroupPerms:   rec.Perms.Group.String(),
		WorldPerms:   rec.Perms.World.String(),
		UpdatedBy:    rec.UpdatedBy,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   resourceKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"owner_perms", "group_perms", "world_perms", "updated_at", "updated_by"}),
	}).Create(&row).Error
	if err != nil {
		return storageFault("save record", err)
	}
	return nil
}

// GetRecord loads the grant record, returning nil (not an error) when unset.
func (s *Store) GetRecord(ctx context.Context, resourceType, resourceID string) (*Record, error) {
	var row models.ResourcePermission
	err := s.db.WithContext(ctx).
		First(&row, "resource_type = ? AND resource_id = ?", resourceType, resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageFault("load record", err)
	}

	owner, err := ParseSet(row.OwnerPerms)
	if err != nil {
		return nil, storageFault("load record", err)
	}
	group, err := ParseSet(row.GroupPerms)
	if err != nil {
		return nil, storageFault("load record", err)
	}
	world, err := ParseSet(row.WorldPerms)
	if err != nil {
		return nil, storageFault("load record", err)
	}

	return &Record{
		ResourceType: row.ResourceType,
		ResourceID:   row.ResourceID,
		Perms:        Triple{Owner: owner, Group: group, World: world},
		UpdatedAt:    row.UpdatedAt,
		UpdatedBy:    row.UpdatedBy,
	}, nil
}

// DeleteRecord removes the grant record; deleting an absent row is not an error.
func (s *Store) DeleteRecord(ctx context.Context, resourceType, resourceID string) error {
	err := s.db.WithContext(ctx).
		Delete(&models.ResourcePermission{}, "resource_type = ? AND resource_id = ?", resourceType, resourceID).Error
	if err != nil {
		return storageFault("delete record", err)
	}
	return nil
}

func storageFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
