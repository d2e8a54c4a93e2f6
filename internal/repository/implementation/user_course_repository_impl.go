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

type UserCourseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserCourseMapper
}

func NewUserCourseRepository(db *gorm.DB) contract.UserCourseRepository {
	return &UserCourseRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserCourseMapper(),
	}
}

func (r *UserCourseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserCourseRepositoryImpl) Create(ctx context.Context, membership *entity.UserCourse) error {
	m := r.mapper.ToModel(membership)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*membership = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserCourseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.UserCourse{}, id).Error
}

func (r *UserCourseRepositoryImpl) DeleteByUserAndCourse(ctx context.Context, userId, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userId, courseId).
		Delete(&model.UserCourse{}).Error
}

func (r *UserCourseRepositoryImpl) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseId).Delete(&model.UserCourse{}).Error
}

func (r *UserCourseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserCourse, error) {
	var m model.UserCourse
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserCourseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserCourse, error) {
	var models []*model.UserCourse
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UserCourse, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *UserCourseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.UserCourse{}).Count(&count).Error
	return count, err
}
