package mapper

import (
	"time"

	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/model"
)

type CourseFileMapper struct{}

func NewCourseFileMapper() *CourseFileMapper {
	return &CourseFileMapper{}
}

func (m *CourseFileMapper) ToEntity(e *model.CourseFile) *entity.CourseFile {
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

	return &entity.CourseFile{
		Id:          e.Id,
		CourseId:    e.CourseId,
		Filename:    e.Filename,
		StoragePath: e.StoragePath,
		SizeBytes:   e.SizeBytes,
		Status:      e.Status,
		ChunkCount:  e.ChunkCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *CourseFileMapper) ToModel(e *entity.CourseFile) *model.CourseFile {
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

	return &model.CourseFile{
		Id:          e.Id,
		CourseId:    e.CourseId,
		Filename:    e.Filename,
		StoragePath: e.StoragePath,
		SizeBytes:   e.SizeBytes,
		Status:      e.Status,
		ChunkCount:  e.ChunkCount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
