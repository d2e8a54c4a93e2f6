package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseFile struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Filename    string         `gorm:"type:varchar(255);not null"`
	StoragePath string         `gorm:"type:varchar(512);not null"`
	SizeBytes   int64          `gorm:"default:0"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending'"`
	ChunkCount  int            `gorm:"default:0"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (CourseFile) TableName() string {
	return "course_files"
}
