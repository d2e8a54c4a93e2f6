package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/mapper"
	"tai-backend/internal/model"
	"tai-backend/internal/repository/contract"
	"tai-backend/internal/repository/specification"
)

type GuardrailRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GuardrailMapper
}

func NewGuardrailRepository(db *gorm.DB) contract.GuardrailRepository {
	return &GuardrailRepositoryImpl{
		db:     db,
		mapper: mapper.NewGuardrailMapper(),
	}
}

func (r *GuardrailRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GuardrailRepositoryImpl) Create(ctx context.Context, guardrail *entity.Guardrail) error {
	m := r.mapper.ToModel(guardrail)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*guardrail = *r.mapper.ToEntity(m)
	return nil
}

func (r *GuardrailRepositoryImpl) Update(ctx context.Context, guardrail *entity.Guardrail) error {
	m := r.mapper.ToModel(guardrail)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*guardrail = *r.mapper.ToEntity(m)
	return nil
}

func (r *GuardrailRepositoryImpl) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseId).Delete(&model.Guardrail{}).Error
}

func (r *GuardrailRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Guardrail, error) {
	var m model.Guardrail
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
