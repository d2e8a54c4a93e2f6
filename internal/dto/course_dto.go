package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type CourseResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ClassCode   string    `json:"class_code"`
	CreatedAt   time.Time `json:"created_at"`
}

type JoinCourseRequest struct {
	ClassCode string `json:"class_code" validate:"required,min=4"`
}

type CourseActivityResponse struct {
	CourseId     uuid.UUID `json:"course_id"`
	FileCount    int64     `json:"file_count"`
	ChunkCount   int64     `json:"chunk_count"`
	StudentCount int64     `json:"student_count"`
	SessionCount int64     `json:"session_count"`
	MessageCount int64     `json:"message_count"`
	AvgHintLevel float64   `json:"avg_hint_level"`
}
