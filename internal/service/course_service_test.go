package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/repository/memory"
	"tai-backend/internal/repository/specification"
	"tai-backend/pkg/guardrail"
)

type fakeCourseRepo struct {
	course       *entity.Course
	deleted      []uuid.UUID
	findOneSpecs []specification.Specification
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *entity.Course) error { return nil }
func (f *fakeCourseRepo) Update(ctx context.Context, course *entity.Course) error { return nil }
func (f *fakeCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeCourseRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Course, error) {
	f.findOneSpecs = append(f.findOneSpecs, specs...)
	return f.course, nil
}
func (f *fakeCourseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Course, error) {
	if f.course == nil {
		return nil, nil
	}
	return []*entity.Course{f.course}, nil
}

type fakeGuardrailRepo struct {
	rails          *entity.Guardrail
	updated        *entity.Guardrail
	deletedCourses []uuid.UUID
}

func (f *fakeGuardrailRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	f.deletedCourses = append(f.deletedCourses, courseId)
	return nil
}

func (f *fakeGuardrailRepo) Create(ctx context.Context, rails *entity.Guardrail) error {
	f.rails = rails
	return nil
}

func (f *fakeGuardrailRepo) Update(ctx context.Context, rails *entity.Guardrail) error {
	f.updated = rails
	return nil
}

func (f *fakeGuardrailRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Guardrail, error) {
	return f.rails, nil
}

func TestDeleteCourseCascades(t *testing.T) {
	instructorId := uuid.New()
	courseId := uuid.New()

	storagePath := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(storagePath, []byte("material"), 0o644))

	courseRepo := &fakeCourseRepo{course: &entity.Course{Id: courseId, InstructorId: instructorId}}
	railsRepo := &fakeGuardrailRepo{}
	fileRepo := &fakeFileRepo{files: []*entity.CourseFile{{Id: uuid.New(), CourseId: courseId, StoragePath: storagePath}}}
	sessionRepo := &fakeSessionRepo{}
	messageRepo := &fakeMessageRepo{}
	chunkRepo := &fakeChunkRepo{}
	members := &fakeMembershipRepo{}

	uow := &fakeUnitOfWork{
		courses:  courseRepo,
		rails:    railsRepo,
		files:    fileRepo,
		sessions: sessionRepo,
		messages: messageRepo,
		chunks:   chunkRepo,
		members:  members,
	}
	cache := memory.NewPolicyCache()
	cache.Save(courseId, guardrail.DefaultPolicy())
	svc := NewCourseService(&fakeFactory{uow: uow}, cache, nil)

	require.NoError(t, svc.Delete(context.Background(), instructorId, courseId))

	// Everything hanging off the course goes with it.
	assert.Equal(t, []uuid.UUID{courseId}, messageRepo.deletedCourses)
	assert.Equal(t, []uuid.UUID{courseId}, sessionRepo.deletedCourses)
	assert.Equal(t, []uuid.UUID{courseId}, chunkRepo.deletedCourses)
	assert.Equal(t, []uuid.UUID{courseId}, fileRepo.deletedCourses)
	assert.Equal(t, []uuid.UUID{courseId}, railsRepo.deletedCourses)
	assert.Equal(t, []uuid.UUID{courseId}, members.deletedCourses)
	assert.Equal(t, []uuid.UUID{courseId}, courseRepo.deleted)

	_, statErr := os.Stat(storagePath)
	assert.True(t, os.IsNotExist(statErr), "uploaded bytes must be removed")

	_, found := cache.Get(courseId)
	assert.False(t, found, "the cached policy must not outlive the course")
}

func TestShowByCodeUppercasesInput(t *testing.T) {
	courseRepo := &fakeCourseRepo{course: &entity.Course{Id: uuid.New(), ClassCode: "7F3K2A"}}
	uow := &fakeUnitOfWork{courses: courseRepo}
	svc := NewCourseService(&fakeFactory{uow: uow}, memory.NewPolicyCache(), nil)

	res, err := svc.ShowByCode(context.Background(), "7f3k2a")
	require.NoError(t, err)
	assert.Equal(t, "7F3K2A", res.ClassCode)

	// The lookup itself must carry the canonical uppercase code.
	require.Len(t, courseRepo.findOneSpecs, 1)
	spec, ok := courseRepo.findOneSpecs[0].(specification.ByClassCode)
	require.True(t, ok)
	assert.Equal(t, "7F3K2A", spec.ClassCode)
}

func TestUpdateGuardrailsMergesOnlyProvidedFields(t *testing.T) {
	instructorId := uuid.New()
	courseId := uuid.New()

	railsRepo := &fakeGuardrailRepo{
		rails: &entity.Guardrail{
			Id:       uuid.New(),
			CourseId: courseId,
			Config: guardrail.Policy{
				AllowFinalAnswer: false,
				AllowCode:        true,
				MaxHintLevel:     2,
				CourseLevel:      guardrail.CourseLevelUniversity,
				AssessmentMode:   guardrail.AssessmentModeHomework,
			},
		},
	}
	uow := &fakeUnitOfWork{
		courses: &fakeCourseRepo{course: &entity.Course{Id: courseId, InstructorId: instructorId}},
		rails:   railsRepo,
	}
	svc := NewCourseService(&fakeFactory{uow: uow}, memory.NewPolicyCache(), nil)

	maxHint := 3
	mode := guardrail.AssessmentModeExam
	res, err := svc.UpdateGuardrails(context.Background(), instructorId, courseId, &dto.UpdateGuardrailRequest{
		MaxHintLevel:   &maxHint,
		AssessmentMode: &mode,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Config.MaxHintLevel)
	assert.Equal(t, guardrail.AssessmentModeExam, res.Config.AssessmentMode)
	// Untouched fields keep their stored values.
	assert.True(t, res.Config.AllowCode)
	assert.False(t, res.Config.AllowFinalAnswer)
	assert.Equal(t, guardrail.CourseLevelUniversity, res.Config.CourseLevel)

	require.NotNil(t, railsRepo.updated)
	assert.Equal(t, res.Config, railsRepo.updated.Config)
}

func TestUpdateGuardrailsCreatesRowWhenMissing(t *testing.T) {
	instructorId := uuid.New()
	courseId := uuid.New()

	railsRepo := &fakeGuardrailRepo{}
	uow := &fakeUnitOfWork{
		courses: &fakeCourseRepo{course: &entity.Course{Id: courseId, InstructorId: instructorId}},
		rails:   railsRepo,
	}
	svc := NewCourseService(&fakeFactory{uow: uow}, memory.NewPolicyCache(), nil)

	allow := true
	res, err := svc.UpdateGuardrails(context.Background(), instructorId, courseId, &dto.UpdateGuardrailRequest{
		AllowFinalAnswer: &allow,
	})
	require.NoError(t, err)

	assert.True(t, res.Config.AllowFinalAnswer)
	// Everything else comes from the default policy.
	assert.Equal(t, guardrail.DefaultPolicy().MaxHintLevel, res.Config.MaxHintLevel)
	require.NotNil(t, railsRepo.rails)
	assert.Equal(t, courseId, railsRepo.rails.CourseId)
}

func TestUpdateGuardrailsRejectsNonOwner(t *testing.T) {
	courseId := uuid.New()
	uow := &fakeUnitOfWork{
		courses: &fakeCourseRepo{course: &entity.Course{Id: courseId, InstructorId: uuid.New()}},
		rails:   &fakeGuardrailRepo{},
	}
	svc := NewCourseService(&fakeFactory{uow: uow}, memory.NewPolicyCache(), nil)

	_, err := svc.UpdateGuardrails(context.Background(), uuid.New(), courseId, &dto.UpdateGuardrailRequest{})

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, fiber.StatusForbidden, fiberErr.Code)
}

func TestUpdateGuardrailsInvalidatesPolicyCache(t *testing.T) {
	instructorId := uuid.New()
	courseId := uuid.New()

	cache := memory.NewPolicyCache()
	cache.Save(courseId, guardrail.Policy{MaxHintLevel: 1})

	uow := &fakeUnitOfWork{
		courses: &fakeCourseRepo{course: &entity.Course{Id: courseId, InstructorId: instructorId}},
		rails:   &fakeGuardrailRepo{rails: &entity.Guardrail{Id: uuid.New(), CourseId: courseId, Config: guardrail.DefaultPolicy()}},
	}
	svc := NewCourseService(&fakeFactory{uow: uow}, cache, nil)

	maxHint := 3
	_, err := svc.UpdateGuardrails(context.Background(), instructorId, courseId, &dto.UpdateGuardrailRequest{MaxHintLevel: &maxHint})
	require.NoError(t, err)

	_, found := cache.Get(courseId)
	assert.False(t, found, "stale policy must be evicted after an update")
}
