package models

// Group is a named principal that can own resources and carry members.
type Group struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`

	Members []GroupMembership `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}
