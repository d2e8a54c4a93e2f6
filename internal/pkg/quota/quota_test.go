package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithoutRedisFailsOpen(t *testing.T) {
	limiter := NewLimiter(nil, 10)
	assert.NoError(t, limiter.Allow(context.Background(), "student-1"))
}

func TestAllowWithZeroLimitDisablesQuota(t *testing.T) {
	limiter := NewLimiter(nil, 0)
	assert.NoError(t, limiter.Allow(context.Background(), "student-1"))
}

func TestLimitExceededErrorMessage(t *testing.T) {
	err := &LimitExceededError{Limit: 100}
	assert.Equal(t, "daily chat limit of 100 messages reached", err.Error())
}
