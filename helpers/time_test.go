package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecondsOr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7*time.Second, SecondsOr(0, 7*time.Second))
	assert.Equal(t, 7*time.Second, SecondsOr(-1, 7*time.Second))
	assert.Equal(t, 3*time.Second, SecondsOr(3, 7*time.Second))
}
