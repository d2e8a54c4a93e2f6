package memory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tai-backend/pkg/guardrail"
)

func TestPolicyCacheRoundTrip(t *testing.T) {
	cache := NewPolicyCache()
	courseId := uuid.New()

	_, found := cache.Get(courseId)
	assert.False(t, found)

	policy := guardrail.Policy{
		AllowFinalAnswer: true,
		MaxHintLevel:     3,
		CourseLevel:      guardrail.CourseLevelHigh,
		AssessmentMode:   guardrail.AssessmentModePractice,
	}
	cache.Save(courseId, policy)

	got, found := cache.Get(courseId)
	assert.True(t, found)
	assert.Equal(t, policy, got)
}

func TestPolicyCacheInvalidate(t *testing.T) {
	cache := NewPolicyCache()
	courseId := uuid.New()

	cache.Save(courseId, guardrail.DefaultPolicy())
	cache.Invalidate(courseId)

	_, found := cache.Get(courseId)
	assert.False(t, found)
}

func TestPolicyCacheIsolatesCourses(t *testing.T) {
	cache := NewPolicyCache()
	a, b := uuid.New(), uuid.New()

	cache.Save(a, guardrail.Policy{MaxHintLevel: 1})
	cache.Save(b, guardrail.Policy{MaxHintLevel: 3})
	cache.Invalidate(a)

	_, found := cache.Get(a)
	assert.False(t, found)
	got, found := cache.Get(b)
	assert.True(t, found)
	assert.Equal(t, 3, got.MaxHintLevel)
}
