package middleware

import "sync"

// CircuitBreaker tracks consecutive primary-store errors:
//   - open after failureThreshold consecutive failures; while open the
//     in-memory fallback answers and responses carry X-RateLimit-Status: degraded
//   - close again after successThreshold consecutive primary successes
type CircuitBreaker struct {
	mu               sync.Mutex
	state            circuitState
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
}

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
)

func newCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		state:            circuitClosed,
		failureThreshold: 5,
		successThreshold: 3,
	}
}

func (c *CircuitBreaker) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == circuitOpen
}

// RecordFailure returns true when the circuit is open afterwards.
func (c *CircuitBreaker) RecordFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount++
	c.successCount = 0
	if c.failureCount >= c.failureThreshold {
		c.state = circuitOpen
	}
	return c.state == circuitOpen
}

// RecordSuccess returns true when the circuit is closed afterwards.
func (c *CircuitBreaker) RecordSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == circuitOpen {
		c.successCount++
		if c.successCount >= c.successThreshold {
			c.state = circuitClosed
			c.failureCount = 0
			c.successCount = 0
		}
		return c.state == circuitClosed
	}
	c.failureCount = 0
	return true
}
