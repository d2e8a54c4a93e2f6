package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tai-backend/internal/entity"
	"tai-backend/internal/model"
	"tai-backend/pkg/guardrail"
)

type GuardrailMapper struct{}

func NewGuardrailMapper() *GuardrailMapper {
	return &GuardrailMapper{}
}

// ToEntity decodes the stored config blob. Unknown or corrupt configs fall
// back to the default policy rather than failing the chat turn.
func (m *GuardrailMapper) ToEntity(e *model.Guardrail) *entity.Guardrail {
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

	config := guardrail.DefaultPolicy()
	if len(e.Config) > 0 {
		if err := json.Unmarshal(e.Config, &config); err != nil {
			config = guardrail.DefaultPolicy()
		}
	}

	return &entity.Guardrail{
		Id:        e.Id,
		CourseId:  e.CourseId,
		Config:    config,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *GuardrailMapper) ToModel(e *entity.Guardrail) *model.Guardrail {
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

	raw, _ := json.Marshal(e.Config)

	return &model.Guardrail{
		Id:        e.Id,
		CourseId:  e.CourseId,
		Config:    datatypes.JSON(raw),
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
