package contract

import (
	"context"

	"github.com/google/uuid"

	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
}

type UserCourseRepository interface {
	Create(ctx context.Context, membership *entity.UserCourse) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserAndCourse(ctx context.Context, userId, courseId uuid.UUID) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserCourse, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserCourse, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
