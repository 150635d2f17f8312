package models

import "time"

// Membership roles. The role gates group-management operations only; any
// membership counts as "in group" for permission resolution.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMembership records that a user belongs to a group with a role.
// User identifiers are opaque; the owning bounded context validates them.
type GroupMembership struct {
	GroupID string `gorm:"primaryKey;type:uuid" json:"group_id"`
	UserID  string `gorm:"primaryKey;type:varchar(128);index" json:"user_id"`

	Role string `gorm:"type:varchar(16);not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name for GORM.
func (GroupMembership) TableName() string {
	return "group_memberships"
}
