package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
)

// Accepted upload extensions. PDF text is extracted during indexing.
var allowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

type IUploadService interface {
	Upload(ctx context.Context, instructorId, courseId uuid.UUID, fileHeader *multipart.FileHeader) (*dto.CourseFileResponse, error)
}

type uploadService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	uploadDir        string
}

func NewUploadService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService, uploadDir string) IUploadService {
	return &uploadService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		uploadDir:        uploadDir,
	}
}

// Upload stores the bytes, records the file as pending and queues the
// indexing job. Chunking and embedding happen in the consumer.
func (s *uploadService) Upload(ctx context.Context, instructorId, courseId uuid.UUID, fileHeader *multipart.FileHeader) (*dto.CourseFileResponse, error) {
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

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unsupported file type %q", ext))
	}

	fileId := uuid.New()
	courseDir := filepath.Join(s.uploadDir, courseId.String())
	storagePath := filepath.Join(courseDir, fmt.Sprintf("%s%s", fileId, ext))

	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(storagePath)
		return nil, err
	}

	file := &entity.CourseFile{
		Id:          fileId,
		CourseId:    courseId,
		Filename:    fileHeader.Filename,
		StoragePath: storagePath,
		SizeBytes:   written,
		Status:      entity.FileStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := uow.CourseFileRepository().Create(ctx, file); err != nil {
		os.Remove(storagePath)
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishIndexFileMessage{FileId: fileId})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	return &dto.CourseFileResponse{
		Id:         file.Id,
		Filename:   file.Filename,
		SizeBytes:  file.SizeBytes,
		Status:     file.Status,
		ChunkCount: file.ChunkCount,
		CreatedAt:  file.CreatedAt,
	}, nil
}
