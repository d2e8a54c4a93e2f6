package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCourseID scopes rows to one course.
type ByCourseID struct {
	CourseID uuid.UUID
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}

// ByClassCode looks a course up by its join code.
type ByClassCode struct {
	ClassCode string
}

func (s ByClassCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("class_code = ?", s.ClassCode)
}

// ByInstructorID scopes courses to their owner.
type ByInstructorID struct {
	InstructorID uuid.UUID
}

func (s ByInstructorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("instructor_id = ?", s.InstructorID)
}

// ByCourseFileID scopes chunks to one uploaded file.
type ByCourseFileID struct {
	CourseFileID uuid.UUID
}

func (s ByCourseFileID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_file_id = ?", s.CourseFileID)
}
