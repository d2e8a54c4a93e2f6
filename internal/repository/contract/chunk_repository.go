package contract

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
)

// ScoredChunk wraps Chunk with its cosine similarity to the query vector.
type ScoredChunk struct {
	Chunk      *entity.Chunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// ScopeViolationError reports a retrieved chunk belonging to a different
// course than the one queried. This is an invariant breach, never something
// to filter out: a student must not see another course's material, and a
// result set that crosses courses means the scoping itself is broken.
type ScopeViolationError struct {
	QueryCourseId uuid.UUID
	ChunkId       uuid.UUID
	ChunkCourseId uuid.UUID
}

func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("retrieval scope violation: chunk %s belongs to course %s, query was for course %s",
		e.ChunkId, e.ChunkCourseId, e.QueryCourseId)
}

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	DeleteByFileId(ctx context.Context, fileId uuid.UUID) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the top chunks of a course ranked by
	// cosine similarity, joined with course_files for the source filenames.
	SearchSimilarWithScore(ctx context.Context, courseId uuid.UUID, embedding []float32, limit int) ([]*ScoredChunk, error)
}
