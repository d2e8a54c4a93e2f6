package dto

import (
	"time"

	"github.com/google/uuid"

	"tai-backend/pkg/assistant"
)

type CreateSessionRequest struct {
	CourseId uuid.UUID `json:"course_id" validate:"required"`
	Title    string    `json:"title" validate:"omitempty,max=255"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	CourseId  uuid.UUID  `json:"course_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SendChatRequest struct {
	SessionId           uuid.UUID `json:"session_id" validate:"required"`
	Message             string    `json:"message" validate:"required,min=1,max=8000"`
	RequestHintIncrease bool      `json:"request_hint_increase"`
}

type ChatMessageResponse struct {
	Id        uuid.UUID          `json:"id"`
	SessionId uuid.UUID          `json:"session_id"`
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	HintLevel *int               `json:"hint_level"`
	Sources   []assistant.Source `json:"sources"`
	CreatedAt time.Time          `json:"created_at"`
}

type SendChatResponse struct {
	Message   ChatMessageResponse `json:"message"`
	HintLevel int                 `json:"hint_level"`
	Action    string              `json:"action"`
}
