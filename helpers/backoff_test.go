package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	b := Backoff{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond, K: 2}
	assert.Equal(t, 10*time.Millisecond, b.DelayAfter(false))
	assert.Equal(t, 20*time.Millisecond, b.DelayAfter(false))
	assert.Equal(t, 40*time.Millisecond, b.DelayAfter(false))
	assert.Equal(t, 50*time.Millisecond, b.DelayAfter(false))
	assert.Equal(t, 50*time.Millisecond, b.DelayAfter(false))
	assert.Equal(t, time.Duration(0), b.DelayAfter(true))
	assert.Equal(t, 20*time.Millisecond, b.DelayAfter(false))
}
