package entity

import (
	"time"

	"github.com/google/uuid"

	"tai-backend/pkg/guardrail"
)

// Guardrail couples a course with its decoded policy config.
type Guardrail struct {
	Id        uuid.UUID
	CourseId  uuid.UUID
	Config    guardrail.Policy
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
