package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishIndexFileMessage is the async indexing job payload.
type PublishIndexFileMessage struct {
	FileId uuid.UUID `json:"file_id"`
}

type CourseFileResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
