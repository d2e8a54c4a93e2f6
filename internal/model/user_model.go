package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"type:varchar(255)"`
	Role         string         `gorm:"type:varchar(20);not null;default:'student'"`
	Email        *string        `gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash *string        `gorm:"type:varchar(255)"`
	DeviceId     *string        `gorm:"type:varchar(255);uniqueIndex"`
	IsVerified   bool           `gorm:"default:false"`
	Otp          *string        `gorm:"type:varchar(10)"`
	OtpExpiresAt *time.Time
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
