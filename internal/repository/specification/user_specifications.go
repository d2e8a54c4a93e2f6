package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByUserID scopes rows to one user.
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByEmail looks a user up by email.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByDeviceID looks a student up by the anonymous device identifier.
type ByDeviceID struct {
	DeviceID string
}

func (s ByDeviceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("device_id = ?", s.DeviceID)
}
