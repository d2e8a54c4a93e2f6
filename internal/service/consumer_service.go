package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"tai-backend/internal/dto"
	"tai-backend/internal/entity"
	"tai-backend/internal/repository/specification"
	"tai-backend/internal/repository/unitofwork"
	"tai-backend/pkg/chunker"
	"tai-backend/pkg/embedding"
	"tai-backend/pkg/events"
	"tai-backend/pkg/extractor"
	pktNats "tai-backend/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService runs the indexing pipeline: extract the upload's text,
// split into chunks, embed the batch, and atomically replace the file's
// chunks.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	splitter          *chunker.Chunker
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	splitter *chunker.Chunker,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		splitter:          splitter,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexFileMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing course file %s", payload.FileId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.CourseFileRepository().FindOne(ctx, specification.ByID{ID: payload.FileId})
	if err != nil {
		log.Printf("[ERROR] Failed to get file %s: %v", payload.FileId, err)
		msg.Nack()
		return
	}
	if file == nil {
		log.Printf("[ERROR] File not found: %s", payload.FileId)
		msg.Ack() // File deleted before indexing? Ack.
		return
	}

	text, err := extractor.Text(file.StoragePath)
	if err != nil {
		log.Printf("[ERROR] Failed to extract text from %s: %v", file.StoragePath, err)
		cs.markFailed(ctx, uow, file, "unreadable upload")
		msg.Ack()
		return
	}

	texts, err := cs.splitter.Split(text)
	if err != nil {
		log.Printf("[ERROR] Failed to split file %s: %v", payload.FileId, err)
		cs.markFailed(ctx, uow, file, "empty or unsplittable content")
		msg.Ack()
		return
	}

	vectors, err := cs.embeddingProvider.GenerateBatch(ctx, texts)
	if err != nil {
		log.Printf("[ERROR] Failed to embed %d chunks of file %s: %v", len(texts), payload.FileId, err)
		msg.Nack() // Embedding outages are retriable
		return
	}

	newChunks := make([]*entity.Chunk, len(texts))
	for i, text := range texts {
		newChunks[i] = &entity.Chunk{
			Id:             uuid.New(),
			CourseFileId:   file.Id,
			CourseId:       file.CourseId,
			Content:        text,
			EmbeddingValue: vectors[i],
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-indexing replaces the file's chunks wholesale.
	if err := uow.ChunkRepository().DeleteByFileId(ctx, file.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if err := uow.ChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		log.Printf("[ERROR] Failed to create chunks: %v", err)
		msg.Nack()
		return
	}

	file.Status = entity.FileStatusIndexed
	file.ChunkCount = len(newChunks)
	if err := uow.CourseFileRepository().Update(ctx, file); err != nil {
		log.Printf("[ERROR] Failed to update file status: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewFileIndexed(file.Id.String(), file.CourseId.String(), len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish file indexed event: %v", err)
		}
	}

	log.Printf("[SUCCESS] File %s indexed into %d chunks", payload.FileId, len(newChunks))
	msg.Ack()
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, file *entity.CourseFile, reason string) {
	file.Status = entity.FileStatusFailed
	if err := uow.CourseFileRepository().Update(ctx, file); err != nil {
		log.Printf("[ERROR] Failed to mark file %s failed: %v", file.Id, err)
	}
	if cs.eventPublisher != nil {
		evt := events.NewFileIndexFailed(file.Id.String(), file.CourseId.String(), reason)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish file index failed event: %v", err)
		}
	}
}
