package entity

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	Id           uuid.UUID
	Name         string
	Description  string
	ClassCode    string
	InstructorId uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}

type UserCourse struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	CourseId  uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
