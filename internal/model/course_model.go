package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"type:varchar(255);not null"`
	Description  string         `gorm:"type:text"`
	ClassCode    string         `gorm:"type:varchar(20);not null;uniqueIndex"`
	InstructorId uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}
