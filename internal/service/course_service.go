package service

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/repository/memory"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
	"tai-backend/pkg/events"
	"tai-backend/pkg/guardrail"
	pktNats "tai-backend/pkg/nats"
)

type ICourseService interface {
	Create(ctx context.Context, instructorId uuid.UUID, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetAll(ctx context.Context, instructorId uuid.UUID) ([]*dto.CourseResponse, error)
	Show(ctx context.Context, courseId uuid.UUID) (*dto.CourseResponse, error)
	ShowByCode(ctx context.Context, classCode string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, instructorId, courseId uuid.UUID) error
	GetGuardrails(ctx context.Context, courseId uuid.UUID) (*dto.GuardrailResponse, error)
	UpdateGuardrails(ctx context.Context, instructorId, courseId uuid.UUID, req *dto.UpdateGuardrailRequest) (*dto.GuardrailResponse, error)
	GetPolicy(ctx context.Context, courseId uuid.UUID) (guardrail.Policy, error)
	GetFiles(ctx context.Context, courseId uuid.UUID) ([]*dto.CourseFileResponse, error)
	DeleteFile(ctx context.Context, instructorId, courseId, fileId uuid.UUID) error
	GetActivity(ctx context.Context, instructorId, courseId uuid.UUID) (*dto.CourseActivityResponse, error)
}

type courseService struct {
	uowFactory     unitofwork.RepositoryFactory
	policyCache    *memory.PolicyCache
	eventPublisher *pktNats.Publisher
}

func NewCourseService(uowFactory unitofwork.RepositoryFactory, policyCache *memory.PolicyCache, eventPublisher *pktNats.Publisher) ICourseService {
	return &courseService{
		uowFactory:     uowFactory,
		policyCache:    policyCache,
		eventPublisher: eventPublisher,
	}
}

// generateClassCode returns a short join code like "7F3K2A".
func generateClassCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	code := make([]byte, 0, 6)
	for i := 0; i < len(raw) && len(code) < 6; i++ {
		// Skip easily confused characters.
		if raw[i] == '0' || raw[i] == 'O' || raw[i] == '1' || raw[i] == 'I' {
			continue
		}
		code = append(code, raw[i])
	}
	return string(code)
}

func (s *courseService) Create(ctx context.Context, instructorId uuid.UUID, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Retry the code on the off chance of a collision.
	var classCode string
	for i := 0; i < 5; i++ {
		classCode = generateClassCode()
		existing, err := uow.CourseRepository().FindOne(ctx, specification.ByClassCode{ClassCode: classCode})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
	}

	course := &entity.Course{
		Id:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		ClassCode:    classCode,
		InstructorId: instructorId,
		CreatedAt:    time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CourseRepository().Create(ctx, course); err != nil {
		return nil, err
	}

	// Every course starts with the default policy row.
	rails := &entity.Guardrail{
		Id:        uuid.New(),
		CourseId:  course.Id,
		Config:    guardrail.DefaultPolicy(),
		CreatedAt: time.Now(),
	}
	if err := uow.GuardrailRepository().Create(ctx, rails); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CourseResponse{
		Id:          course.Id,
		Name:        course.Name,
		Description: course.Description,
		ClassCode:   course.ClassCode,
		CreatedAt:   course.CreatedAt,
	}, nil
}

func (s *courseService) GetAll(ctx context.Context, instructorId uuid.UUID) ([]*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	courses, err := uow.CourseRepository().FindAll(ctx,
		specification.ByInstructorID{InstructorID: instructorId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CourseResponse, len(courses))
	for i, c := range courses {
		result[i] = &dto.CourseResponse{
			Id:          c.Id,
			Name:        c.Name,
			Description: c.Description,
			ClassCode:   c.ClassCode,
			CreatedAt:   c.CreatedAt,
		}
	}
	return result, nil
}

func (s *courseService) Show(ctx context.Context, courseId uuid.UUID) (*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "course not found")
	}

	return &dto.CourseResponse{
		Id:          course.Id,
		Name:        course.Name,
		Description: course.Description,
		ClassCode:   course.ClassCode,
		CreatedAt:   course.CreatedAt,
	}, nil
}

// ShowByCode lets students preview a course before joining it.
func (s *courseService) ShowByCode(ctx context.Context, classCode string) (*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByClassCode{ClassCode: strings.ToUpper(classCode)})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "no course with that class code")
	}

	return &dto.CourseResponse{
		Id:          course.Id,
		Name:        course.Name,
		Description: course.Description,
		ClassCode:   course.ClassCode,
		CreatedAt:   course.CreatedAt,
	}, nil
}

func (s *courseService) Delete(ctx context.Context, instructorId, courseId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return err
	}
	if course == nil {
		return fiber.NewError(fiber.StatusNotFound, "course not found")
	}
	if course.InstructorId != instructorId {
		return fiber.NewError(fiber.StatusForbidden, "not the course owner")
	}

	// Collect storage paths up front; the rows are gone after the commit.
	files, err := uow.CourseFileRepository().FindAll(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Messages reference sessions, so they go first.
	if err := uow.ChatMessageRepository().DeleteByCourseId(ctx, courseId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().DeleteByCourseId(ctx, courseId); err != nil {
		return err
	}
	if err := uow.ChunkRepository().DeleteByCourseId(ctx, courseId); err != nil {
		return err
	}
	if err := uow.CourseFileRepository().DeleteByCourseId(ctx, courseId); err != nil {
		return err
	}
	if err := uow.GuardrailRepository().DeleteByCourseId(ctx, courseId); err != nil {
		return err
	}
	if err := uow.UserCourseRepository().DeleteByCourseId(ctx, courseId); err != nil {
		return err
	}
	if err := uow.CourseRepository().Delete(ctx, courseId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Best effort: losing the bytes is harmless once the rows are gone.
	for _, f := range files {
		if f.StoragePath == "" {
			continue
		}
		if err := os.Remove(f.StoragePath); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove file %s: %v", f.StoragePath, err)
		}
	}

	s.policyCache.Invalidate(courseId)
	return nil
}

func (s *courseService) GetGuardrails(ctx context.Context, courseId uuid.UUID) (*dto.GuardrailResponse, error) {
	policy, err := s.GetPolicy(ctx, courseId)
	if err != nil {
		return nil, err
	}
	return &dto.GuardrailResponse{Config: policy}, nil
}

// GetPolicy resolves the effective policy for a course. Missing rows resolve
// to the default policy so a chat turn never fails on config absence.
func (s *courseService) GetPolicy(ctx context.Context, courseId uuid.UUID) (guardrail.Policy, error) {
	if policy, found := s.policyCache.Get(courseId); found {
		return policy, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rails, err := uow.GuardrailRepository().FindOne(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return guardrail.Policy{}, err
	}

	policy := guardrail.DefaultPolicy()
	if rails != nil {
		policy = rails.Config
	}

	s.policyCache.Save(courseId, policy)
	return policy, nil
}

func (s *courseService) UpdateGuardrails(ctx context.Context, instructorId, courseId uuid.UUID, req *dto.UpdateGuardrailRequest) (*dto.GuardrailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "course not found")
	}
	if course.InstructorId != instructorId {
		return nil, fiber.NewError(fiber.StatusForbidden, "not the course owner")
	}

	rails, err := uow.GuardrailRepository().FindOne(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return nil, err
	}
	if rails == nil {
		rails = &entity.Guardrail{
			Id:        uuid.New(),
			CourseId:  courseId,
			Config:    guardrail.DefaultPolicy(),
			CreatedAt: time.Now(),
		}
		if err := uow.GuardrailRepository().Create(ctx, rails); err != nil {
			return nil, err
		}
	}

	// Partial merge: only the fields present in the request change.
	if req.AllowFinalAnswer != nil {
		rails.Config.AllowFinalAnswer = *req.AllowFinalAnswer
	}
	if req.AllowCode != nil {
		rails.Config.AllowCode = *req.AllowCode
	}
	if req.MaxHintLevel != nil {
		rails.Config.MaxHintLevel = *req.MaxHintLevel
	}
	if req.CourseLevel != nil {
		rails.Config.CourseLevel = *req.CourseLevel
	}
	if req.AssessmentMode != nil {
		rails.Config.AssessmentMode = *req.AssessmentMode
	}

	if err := uow.GuardrailRepository().Update(ctx, rails); err != nil {
		return nil, err
	}

	s.policyCache.Invalidate(courseId)
	return &dto.GuardrailResponse{Config: rails.Config}, nil
}

func (s *courseService) GetFiles(ctx context.Context, courseId uuid.UUID) ([]*dto.CourseFileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	files, err := uow.CourseFileRepository().FindAll(ctx,
		specification.ByCourseID{CourseID: courseId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CourseFileResponse, len(files))
	for i, f := range files {
		result[i] = &dto.CourseFileResponse{
			Id:         f.Id,
			Filename:   f.Filename,
			SizeBytes:  f.SizeBytes,
			Status:     f.Status,
			ChunkCount: f.ChunkCount,
			CreatedAt:  f.CreatedAt,
		}
	}
	return result, nil
}

func (s *courseService) DeleteFile(ctx context.Context, instructorId, courseId, fileId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return err
	}
	if course == nil {
		return fiber.NewError(fiber.StatusNotFound, "course not found")
	}
	if course.InstructorId != instructorId {
		return fiber.NewError(fiber.StatusForbidden, "not the course owner")
	}

	file, err := uow.CourseFileRepository().FindOne(ctx,
		specification.ByID{ID: fileId},
		specification.ByCourseID{CourseID: courseId},
	)
	if err != nil {
		return err
	}
	if file == nil {
		return fiber.NewError(fiber.StatusNotFound, "file not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByFileId(ctx, fileId); err != nil {
		return err
	}
	if err := uow.CourseFileRepository().Delete(ctx, fileId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Best effort: losing the bytes is harmless once the rows are gone.
	if file.StoragePath != "" {
		if err := os.Remove(file.StoragePath); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove file %s: %v", file.StoragePath, err)
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewFileDeleted(fileId.String(), courseId.String())
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish file deleted event: %v", err)
		}
	}
	return nil
}

func (s *courseService) GetActivity(ctx context.Context, instructorId, courseId uuid.UUID) (*dto.CourseActivityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "course not found")
	}
	if course.InstructorId != instructorId {
		return nil, fiber.NewError(fiber.StatusForbidden, "not the course owner")
	}

	fileCount, err := uow.CourseFileRepository().Count(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return nil, err
	}
	chunkCount, err := uow.ChunkRepository().Count(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return nil, err
	}
	studentCount, err := uow.UserCourseRepository().Count(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return nil, err
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.ByCourseID{CourseID: courseId})
	if err != nil {
		return nil, err
	}

	var messageCount int64
	var hintSum, hintCount int
	for _, sess := range sessions {
		n, err := uow.ChatMessageRepository().Count(ctx, specification.BySessionID{SessionID: sess.Id})
		if err != nil {
			return nil, err
		}
		messageCount += n

		replies, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.BySessionID{SessionID: sess.Id},
			specification.ByRole{Role: entity.ChatRoleAssistant},
		)
		if err != nil {
			return nil, err
		}
		for _, m := range replies {
			if m.HintLevel != nil {
				hintSum += *m.HintLevel
				hintCount++
			}
		}
	}

	var avgHint float64
	if hintCount > 0 {
		avgHint = float64(hintSum) / float64(hintCount)
	}

	return &dto.CourseActivityResponse{
		CourseId:     courseId,
		FileCount:    fileCount,
		ChunkCount:   chunkCount,
		StudentCount: studentCount,
		SessionCount: int64(len(sessions)),
		MessageCount: messageCount,
		AvgHintLevel: avgHint,
	}, nil
}
