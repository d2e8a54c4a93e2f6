package entity

import (
	"time"

	"github.com/google/uuid"
)

// Course file indexing statuses.
const (
	FileStatusPending = "pending"
	FileStatusIndexed = "indexed"
	FileStatusFailed  = "failed"
)

type CourseFile struct {
	Id          uuid.UUID
	CourseId    uuid.UUID
	Filename    string
	StoragePath string
	SizeBytes   int64
	Status      string
	ChunkCount  int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
