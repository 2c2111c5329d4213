package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	t.Run("opens after threshold failures", func(t *testing.T) {
		cb := newCircuitBreaker()
		for range cb.failureThreshold - 1 {
			assert.False(t, cb.RecordFailure())
		}
		assert.True(t, cb.RecordFailure())
		assert.True(t, cb.IsOpen())
	})

	t.Run("success resets failure streak while closed", func(t *testing.T) {
		cb := newCircuitBreaker()
		for range cb.failureThreshold - 1 {
			cb.RecordFailure()
		}
		assert.True(t, cb.RecordSuccess())
		assert.False(t, cb.RecordFailure())
	})

	t.Run("closes after threshold successes", func(t *testing.T) {
		cb := newCircuitBreaker()
		for range cb.failureThreshold {
			cb.RecordFailure()
		}
		for range cb.successThreshold - 1 {
			assert.False(t, cb.RecordSuccess())
		}
		assert.True(t, cb.RecordSuccess())
		assert.False(t, cb.IsOpen())
	})

	t.Run("failure while recovering restarts the success count", func(t *testing.T) {
		cb := newCircuitBreaker()
		for range cb.failureThreshold {
			cb.RecordFailure()
		}
		cb.RecordSuccess()
		cb.RecordFailure()
		for range cb.successThreshold - 1 {
			cb.RecordSuccess()
		}
		assert.True(t, cb.IsOpen())
	})
}
