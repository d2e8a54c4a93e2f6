package entity

import (
	"time"

	"github.com/google/uuid"

	"tai-backend/pkg/assistant"
)

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	HintLevel     *int
	Action        *string
	Sources       []assistant.Source
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
