package model

import (
	"time"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// RoleModel mirrors the 'roles' table. The permission list is stored as a
// JSONB document via GORM's JSON serializer; roles are read-only after
// seeding, so no per-permission rows are needed.
type RoleModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key"`
	Name        string              `gorm:"type:varchar(50);uniqueIndex;not null"`
	Permissions entity.Permissions  `gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (RoleModel) TableName() string {
	return "roles"
}
