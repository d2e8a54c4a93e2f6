package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
	"tai-backend/pkg/events"
	pktNats "tai-backend/pkg/nats"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	JoinCourse(ctx context.Context, userId uuid.UUID, req *dto.JoinCourseRequest) (*dto.CourseResponse, error)
	LeaveCourse(ctx context.Context, userId, courseId uuid.UUID) error
	GetCourses(ctx context.Context, userId uuid.UUID) ([]*dto.CourseResponse, error)
	IsMember(ctx context.Context, userId, courseId uuid.UUID) (bool, error)
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return &dto.UserResponse{
		Id:    user.Id,
		Name:  user.Name,
		Role:  user.Role,
		Email: user.Email,
	}, nil
}

func (s *userService) JoinCourse(ctx context.Context, userId uuid.UUID, req *dto.JoinCourseRequest) (*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Codes are generated uppercase; accept them in any case.
	course, err := uow.CourseRepository().FindOne(ctx, specification.ByClassCode{ClassCode: strings.ToUpper(req.ClassCode)})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "no course with that class code")
	}

	existing, err := uow.UserCourseRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByCourseID{CourseID: course.Id},
	)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		membership := &entity.UserCourse{
			Id:        uuid.New(),
			UserId:    userId,
			CourseId:  course.Id,
			CreatedAt: time.Now(),
		}
		if err := uow.UserCourseRepository().Create(ctx, membership); err != nil {
			return nil, err
		}

		if s.eventPublisher != nil {
			evt := events.NewCourseJoined(userId.String(), course.Id.String())
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				log.Printf("[WARN] Failed to publish course joined event: %v", err)
			}
		}
	}

	return &dto.CourseResponse{
		Id:          course.Id,
		Name:        course.Name,
		Description: course.Description,
		ClassCode:   course.ClassCode,
		CreatedAt:   course.CreatedAt,
	}, nil
}

func (s *userService) LeaveCourse(ctx context.Context, userId, courseId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserCourseRepository().DeleteByUserAndCourse(ctx, userId, courseId)
}

func (s *userService) GetCourses(ctx context.Context, userId uuid.UUID) ([]*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	memberships, err := uow.UserCourseRepository().FindAll(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CourseResponse, 0, len(memberships))
	for _, m := range memberships {
		course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: m.CourseId})
		if err != nil {
			return nil, err
		}
		if course == nil {
			continue
		}
		result = append(result, &dto.CourseResponse{
			Id:          course.Id,
			Name:        course.Name,
			Description: course.Description,
			ClassCode:   course.ClassCode,
			CreatedAt:   course.CreatedAt,
		})
	}
	return result, nil
}

func (s *userService) IsMember(ctx context.Context, userId, courseId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	membership, err := uow.UserCourseRepository().FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByCourseID{CourseID: courseId},
	)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}
