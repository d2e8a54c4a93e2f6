package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Guardrail stores the instructor policy for a course as a JSON config blob,
// one row per course.
type Guardrail struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseId  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Config    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Guardrail) TableName() string {
	return "guardrails"
}
