package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	t.Parallel()

	input := "menu\n\n  order latte \r\ncoin 50\n"
	lines := []string{}
	require.NoError(t, ReadLines(strings.NewReader(input), func(line string) {
		lines = append(lines, line)
	}))
	assert.Equal(t, []string{"menu", "order latte", "coin 50"}, lines)
}
