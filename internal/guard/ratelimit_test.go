package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)

	assert.True(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)

	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-2"))
}

func TestWindowResets(t *testing.T) {
	l := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, l.Allow("user-1"))
}
