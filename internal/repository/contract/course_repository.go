package contract

import (
	"context"

	"github.com/google/uuid"

	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
)

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Course, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Course, error)
}

type GuardrailRepository interface {
	Create(ctx context.Context, guardrail *entity.Guardrail) error
	Update(ctx context.Context, guardrail *entity.Guardrail) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Guardrail, error)
}

type CourseFileRepository interface {
	Create(ctx context.Context, file *entity.CourseFile) error
	Update(ctx context.Context, file *entity.CourseFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseFile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseFile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
