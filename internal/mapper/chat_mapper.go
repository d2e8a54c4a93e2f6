package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/model"
	"tai-backend/pkg/assistant"
)

type ChatSessionMapper struct{}

func NewChatSessionMapper() *ChatSessionMapper {
	return &ChatSessionMapper{}
}

func (m *ChatSessionMapper) ToEntity(e *model.ChatSession) *entity.ChatSession {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        e.Id,
		CourseId:  e.CourseId,
		UserId:    e.UserId,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *ChatSessionMapper) ToModel(e *entity.ChatSession) *model.ChatSession {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ChatSession{
		Id:        e.Id,
		CourseId:  e.CourseId,
		UserId:    e.UserId,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

type ChatMessageMapper struct{}

func NewChatMessageMapper() *ChatMessageMapper {
	return &ChatMessageMapper{}
}

func (m *ChatMessageMapper) ToEntity(e *model.ChatMessage) *entity.ChatMessage {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	sources := make([]assistant.Source, 0)
	if len(e.Sources) > 0 {
		_ = json.Unmarshal(e.Sources, &sources)
	}

	return &entity.ChatMessage{
		Id:            e.Id,
		ChatSessionId: e.ChatSessionId,
		Role:          e.Role,
		Content:       e.Content,
		HintLevel:     e.HintLevel,
		Action:        e.Action,
		Sources:       sources,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     e.DeletedAt.Valid,
	}
}

func (m *ChatMessageMapper) ToModel(e *entity.ChatMessage) *model.ChatMessage {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var sources datatypes.JSON
	if e.Sources != nil {
		raw, _ := json.Marshal(e.Sources)
		sources = datatypes.JSON(raw)
	}

	return &model.ChatMessage{
		Id:            e.Id,
		ChatSessionId: e.ChatSessionId,
		Role:          e.Role,
		Content:       e.Content,
		HintLevel:     e.HintLevel,
		Action:        e.Action,
		Sources:       sources,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

func (m *ChatMessageMapper) ToEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, e := range messages {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
