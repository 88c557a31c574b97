package catalog

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/vender-kiosk/internal/order"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	c, err := New([]Item{
		{Code: "latte", Name: "Latte", Price: 50},
		{Code: "cappuccino", Name: "Cappuccino", Price: 65},
		{Code: "water", Price: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	p, err := c.Lookup("cappuccino")
	require.NoError(t, err)
	assert.Equal(t, order.Product{Code: "cappuccino", Name: "Cappuccino", Price: 65}, p)

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, "cappuccino", list[0].Code)
	assert.Equal(t, "water", list[2].Code)
	assert.Equal(t, "water", list[2].Name, "empty name defaults to code")

	_, err = c.Lookup("tea")
	assert.True(t, errors.IsNotFound(err))
}

func TestCatalogInvalid(t *testing.T) {
	t.Parallel()

	type Case struct {
		name  string
		items []Item
		check func(testing.TB, error)
	}
	cases := []Case{
		{"price-zero", []Item{{Code: "free", Price: 0}}, func(t testing.TB, err error) {
			assert.Equal(t, order.ErrPriceInvalid, errors.Cause(err))
			assert.True(t, errors.IsNotValid(err))
		}},
		{"duplicate", []Item{{Code: "a", Price: 1}, {Code: "a", Price: 2}}, func(t testing.TB, err error) {
			assert.True(t, errors.IsAlreadyExists(err))
		}},
		{"empty-code", []Item{{Name: "nameless", Price: 1}}, func(t testing.TB, err error) {
			assert.True(t, errors.IsNotValid(err))
		}},
		{"many", []Item{{Code: "a"}, {Code: "b"}}, func(t testing.TB, err error) {
			assert.Contains(t, err.Error(), "code=a")
			assert.Contains(t, err.Error(), "code=b")
		}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(c.items)
			require.Error(t, err)
			c.check(t, err)
		})
	}
}
