package models

import "time"

// ResourceOwner registers the single principal controlling a resource.
// Exactly one row may exist per (resource_type, resource_id).
type ResourceOwner struct {
	ResourceType string `gorm:"primaryKey;type:varchar(64)" json:"resource_type"`
	ResourceID   string `gorm:"primaryKey;type:varchar(128)" json:"resource_id"`

	OwnerType string `gorm:"type:varchar(16);not null" json:"owner_type"`
	OwnerID   string `gorm:"type:varchar(128);not null;index" json:"owner_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name for GORM.
func (ResourceOwner) TableName() string {
	return "resource_owners"
}
