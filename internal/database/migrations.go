package database

import (
	"gorm.io/gorm"

	"github.com/evanshaw/resguard/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Group{},
		&models.GroupMembership{},
		&models.ResourceOwner{},
		&models.ResourcePermission{},
		&models.AuditLog{},
	)
}
