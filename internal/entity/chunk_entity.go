package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chunk struct {
	Id             uuid.UUID
	CourseFileId   uuid.UUID
	CourseId       uuid.UUID
	Content        string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
