package mapper

import (
	"time"

	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/model"
)

type CourseMapper struct{}

func NewCourseMapper() *CourseMapper {
	return &CourseMapper{}
}

func (m *CourseMapper) ToEntity(e *model.Course) *entity.Course {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Course{
		Id:           e.Id,
		Name:         e.Name,
		Description:  e.Description,
		ClassCode:    e.ClassCode,
		InstructorId: e.InstructorId,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    e.DeletedAt.Valid,
	}
}

func (m *CourseMapper) ToModel(e *entity.Course) *model.Course {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Course{
		Id:           e.Id,
		Name:         e.Name,
		Description:  e.Description,
		ClassCode:    e.ClassCode,
		InstructorId: e.InstructorId,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

type UserCourseMapper struct{}

func NewUserCourseMapper() *UserCourseMapper {
	return &UserCourseMapper{}
}

func (m *UserCourseMapper) ToEntity(e *model.UserCourse) *entity.UserCourse {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.UserCourse{
		Id:        e.Id,
		UserId:    e.UserId,
		CourseId:  e.CourseId,
		CreatedAt: e.CreatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *UserCourseMapper) ToModel(e *entity.UserCourse) *model.UserCourse {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}

	return &model.UserCourse{
		Id:        e.Id,
		UserId:    e.UserId,
		CourseId:  e.CourseId,
		CreatedAt: e.CreatedAt,
		DeletedAt: deletedAt,
	}
}
