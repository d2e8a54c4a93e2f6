package unitofwork

import (
	"context"

	"tai-backend/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	UserCourseRepository() contract.UserCourseRepository
	CourseRepository() contract.CourseRepository
	GuardrailRepository() contract.GuardrailRepository
	CourseFileRepository() contract.CourseFileRepository
	ChunkRepository() contract.ChunkRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
