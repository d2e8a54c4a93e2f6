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

type CourseFileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CourseFileMapper
}

func NewCourseFileRepository(db *gorm.DB) contract.CourseFileRepository {
	return &CourseFileRepositoryImpl{
		db:     db,
		mapper: mapper.NewCourseFileMapper(),
	}
}

func (r *CourseFileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CourseFileRepositoryImpl) Create(ctx context.Context, file *entity.CourseFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseFileRepositoryImpl) Update(ctx context.Context, file *entity.CourseFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseFileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CourseFile{}, id).Error
}

func (r *CourseFileRepositoryImpl) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseId).Delete(&model.CourseFile{}).Error
}

func (r *CourseFileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseFile, error) {
	var m model.CourseFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CourseFileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CourseFile, error) {
	var models []*model.CourseFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CourseFile, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CourseFileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.CourseFile{}).Count(&count).Error
	return count, err
}
