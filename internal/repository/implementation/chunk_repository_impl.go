package implementation

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/mapper"
	"tai-backend/internal/model"
	"tai-backend/internal/repository/contract"
	"tai-backend/internal/repository/specification"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkRepositoryImpl) DeleteByFileId(ctx context.Context, fileId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_file_id = ?", fileId).Delete(&model.Chunk{}).Error
}

func (r *ChunkRepositoryImpl) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseId).Delete(&model.Chunk{}).Error
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.Chunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Chunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks a course's chunks by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding_value <=> query_vector) and order on it.
func (r *ChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, courseId uuid.UUID, embedding []float32, limit int) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Chunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chunks").
		Select("chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN course_files ON course_files.id = chunks.course_file_id").
		Where("chunks.course_id = ?", courseId).
		Where("chunks.deleted_at IS NULL").
		Where("course_files.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.Chunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
