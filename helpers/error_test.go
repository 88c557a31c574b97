package helpers

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestFoldErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FoldErrors(nil))
	assert.Nil(t, FoldErrors([]error{nil, nil}))

	single := errors.NotFoundf("product code=x")
	folded := FoldErrors([]error{nil, single, nil})
	assert.True(t, errors.IsNotFound(folded))

	folded = FoldErrors([]error{errors.New("first"), nil, errors.New("second")})
	assert.EqualError(t, folded, "first\nsecond")
}
