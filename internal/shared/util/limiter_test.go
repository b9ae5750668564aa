package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter(t *testing.T) {
	// 10 tokens per second, burst of 2
	l := NewLimiter(10, 2)

	assert.True(t, l.Allow(), "first token")
	assert.True(t, l.Allow(), "second token (burst)")
	assert.False(t, l.Allow(), "burst exhausted")

	time.Sleep(150 * time.Millisecond)
	assert.True(t, l.Allow(), "token refilled after wait")
}

func TestLimiter_NextReportsDelayWithoutConsuming(t *testing.T) {
	l := PerMinute(1, 1)
	assert.Zero(t, l.Next())

	first := l.Next()
	assert.Greater(t, first, 50*time.Second)
	assert.LessOrEqual(t, first, time.Minute)

	// A denied call gives its reservation back.
	assert.LessOrEqual(t, l.Next(), first)
}

func TestLimiter_NilAllowsEverything(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow())
	assert.Zero(t, l.Next())
}
