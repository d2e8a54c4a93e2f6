package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserCourse struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_course"`
	CourseId  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_course"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserCourse) TableName() string {
	return "user_courses"
}
