package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
)

type fakeMembershipRepo struct {
	membership     *entity.UserCourse
	created        []*entity.UserCourse
	deletedCourses []uuid.UUID
}

func (f *fakeMembershipRepo) Create(ctx context.Context, membership *entity.UserCourse) error {
	f.created = append(f.created, membership)
	return nil
}
func (f *fakeMembershipRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeMembershipRepo) DeleteByUserAndCourse(ctx context.Context, userId, courseId uuid.UUID) error {
	return nil
}
func (f *fakeMembershipRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	f.deletedCourses = append(f.deletedCourses, courseId)
	return nil
}
func (f *fakeMembershipRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserCourse, error) {
	return f.membership, nil
}
func (f *fakeMembershipRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserCourse, error) {
	if f.membership == nil {
		return nil, nil
	}
	return []*entity.UserCourse{f.membership}, nil
}
func (f *fakeMembershipRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func TestJoinCourseUppercasesClassCode(t *testing.T) {
	courseRepo := &fakeCourseRepo{course: &entity.Course{Id: uuid.New(), ClassCode: "7F3K2A"}}
	members := &fakeMembershipRepo{}
	uow := &fakeUnitOfWork{courses: courseRepo, members: members}
	svc := NewUserService(&fakeFactory{uow: uow}, nil)

	res, err := svc.JoinCourse(context.Background(), uuid.New(), &dto.JoinCourseRequest{ClassCode: "7f3k2a"})
	require.NoError(t, err)
	assert.Equal(t, "7F3K2A", res.ClassCode)
	require.Len(t, members.created, 1)

	// The lookup itself must carry the canonical uppercase code.
	require.Len(t, courseRepo.findOneSpecs, 1)
	spec, ok := courseRepo.findOneSpecs[0].(specification.ByClassCode)
	require.True(t, ok)
	assert.Equal(t, "7F3K2A", spec.ClassCode)
}

func TestJoinCourseIsIdempotent(t *testing.T) {
	courseId := uuid.New()
	userId := uuid.New()
	courseRepo := &fakeCourseRepo{course: &entity.Course{Id: courseId, ClassCode: "7F3K2A"}}
	members := &fakeMembershipRepo{membership: &entity.UserCourse{Id: uuid.New(), UserId: userId, CourseId: courseId}}
	uow := &fakeUnitOfWork{courses: courseRepo, members: members}
	svc := NewUserService(&fakeFactory{uow: uow}, nil)

	res, err := svc.JoinCourse(context.Background(), userId, &dto.JoinCourseRequest{ClassCode: "7F3K2A"})
	require.NoError(t, err)
	assert.Equal(t, courseId, res.Id)
	assert.Empty(t, members.created, "an existing membership must not be duplicated")
}
