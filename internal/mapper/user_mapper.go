package mapper

import (
	"time"

	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(e *model.User) *entity.User {
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

	return &entity.User{
		Id:           e.Id,
		Name:         e.Name,
		Role:         e.Role,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		DeviceId:     e.DeviceId,
		IsVerified:   e.IsVerified,
		Otp:          e.Otp,
		OtpExpiresAt: e.OtpExpiresAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    e.DeletedAt.Valid,
	}
}

func (m *UserMapper) ToModel(e *entity.User) *model.User {
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

	return &model.User{
		Id:           e.Id,
		Name:         e.Name,
		Role:         e.Role,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		DeviceId:     e.DeviceId,
		IsVerified:   e.IsVerified,
		Otp:          e.Otp,
		OtpExpiresAt: e.OtpExpiresAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}
