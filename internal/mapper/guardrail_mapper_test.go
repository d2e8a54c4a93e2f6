package mapper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"tai-backend/internal/entity"
	"tai-backend/internal/model"
	"tai-backend/pkg/guardrail"
)

func TestGuardrailMapperRoundTrip(t *testing.T) {
	m := NewGuardrailMapper()

	e := &entity.Guardrail{
		Id:       uuid.New(),
		CourseId: uuid.New(),
		Config: guardrail.Policy{
			AllowFinalAnswer: true,
			AllowCode:        true,
			MaxHintLevel:     3,
			CourseLevel:      guardrail.CourseLevelMiddle,
			AssessmentMode:   guardrail.AssessmentModeQuiz,
		},
	}

	back := m.ToEntity(m.ToModel(e))
	require.NotNil(t, back)
	assert.Equal(t, e.Id, back.Id)
	assert.Equal(t, e.CourseId, back.CourseId)
	assert.Equal(t, e.Config, back.Config)
}

func TestGuardrailMapperCorruptConfigFallsBackToDefault(t *testing.T) {
	m := NewGuardrailMapper()

	row := &model.Guardrail{
		Id:       uuid.New(),
		CourseId: uuid.New(),
		Config:   datatypes.JSON([]byte(`{"max_hint_level": "not a number"`)),
	}

	e := m.ToEntity(row)
	require.NotNil(t, e)
	assert.Equal(t, guardrail.DefaultPolicy(), e.Config)
}

func TestGuardrailMapperEmptyConfigUsesDefault(t *testing.T) {
	m := NewGuardrailMapper()

	e := m.ToEntity(&model.Guardrail{Id: uuid.New(), CourseId: uuid.New()})
	require.NotNil(t, e)
	assert.Equal(t, guardrail.DefaultPolicy(), e.Config)
}

func TestGuardrailMapperNilSafety(t *testing.T) {
	m := NewGuardrailMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}
