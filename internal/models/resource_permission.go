package models

import "time"

// ResourcePermission stores the rwx grant record for one resource. Permission
// sets are persisted in their canonical 3-character string form.
type ResourcePermission struct {
	ResourceType string `gorm:"primaryKey;type:varchar(64)" json:"resource_type"`
	ResourceID   string `gorm:"primaryKey;type:varchar(128)" json:"resource_id"`

	OwnerPerms string `gorm:"type:char(3);not null" json:"owner_perms"`
	GroupPerms string `gorm:"type:char(3);not null" json:"group_perms"`
	WorldPerms string `gorm:"type:char(3);not null" json:"world_perms"`

	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(128)" json:"updated_by"`
}

// TableName overrides the default table name for GORM.
func (ResourcePermission) TableName() string {
	return "resource_permissions"
}
