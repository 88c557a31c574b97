package currency

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNominals = []Nominal{5, 10, 20, 50, 100, 200}

func createTestNominalGroup(t *testing.T) *NominalGroup {
	ng := &NominalGroup{}
	ng.SetValid(testNominals)
	if err := ng.Add(101, 1); err == nil {
		t.Fatal("expected invalid nominal")
	}
	for _, n := range testNominals {
		if err := ng.Add(n, 3); err != nil {
			t.Fatal(err)
		}
	}
	return ng
}

func TestNominalGroupBasic(t *testing.T) {
	t.Parallel()

	ng := createTestNominalGroup(t)
	assert.Equal(t, Amount(1155), ng.Total())
	assert.Equal(t, []Nominal{200, 100, 50, 20, 10, 5}, ng.Nominals())
	assert.Equal(t, "3*200 + 3*100 + 3*50 + 3*20 + 3*10 + 3*5", ng.Summary())
	assert.Equal(t, "0.05:3,0.1:3,0.2:3,0.5:3,1:3,2:3,total:11.55", ng.String())

	c, err := ng.Get(50)
	require.NoError(t, err)
	assert.Equal(t, uint(3), c)
	_, err = ng.Get(7)
	assert.Equal(t, ErrNominalInvalid, err)

	ng2 := ng.Copy()
	ng2.MustAdd(5, 1)
	assert.Equal(t, Amount(1155), ng.Total(), "copy must not share storage")
	assert.Equal(t, Amount(1160), ng2.Total())

	ng2.Clear()
	assert.Equal(t, Amount(0), ng2.Total())
	assert.Equal(t, "0*200 + 0*100 + 0*50 + 0*20 + 0*10 + 0*5", ng2.Summary())
	ng2.Reset(3)
	assert.Equal(t, ng.Summary(), ng2.Summary())
}

func TestSub1(t *testing.T) {
	t.Parallel()

	ng := NewNominalGroup(testNominals, 1)
	require.NoError(t, ng.Sub1(10))
	err := ng.Sub1(10)
	require.Error(t, err)
	assert.Equal(t, ErrNominalCount, errors.Cause(err))
	c, _ := ng.Get(10)
	assert.Equal(t, uint(0), c, "count must stay at zero")

	err = ng.Sub1(3)
	assert.Equal(t, ErrNominalInvalid, errors.Cause(err))
}

func TestWithdraw(t *testing.T) {
	t.Parallel()

	type Case struct {
		name       string
		counts     map[Nominal]uint
		amount     Amount
		expectOut  []Nominal
		expectRest Amount
		expectLeft string
	}
	cases := []Case{
		{"zero", map[Nominal]uint{5: 3}, 0, []Nominal{}, 0,
			"0*200 + 0*100 + 0*50 + 0*20 + 0*10 + 3*5"},
		{"largest-first", map[Nominal]uint{5: 3, 10: 3, 20: 3, 50: 3, 100: 4, 200: 3}, 35, []Nominal{20, 10, 5}, 0,
			"3*200 + 4*100 + 3*50 + 2*20 + 2*10 + 2*5"},
		{"repeat-nominal", map[Nominal]uint{20: 3, 10: 1}, 50, []Nominal{20, 20, 10}, 0,
			"0*200 + 0*100 + 0*50 + 1*20 + 0*10 + 0*5"},
		{"skip-empty", map[Nominal]uint{50: 0, 20: 1, 10: 2, 5: 2}, 50, []Nominal{20, 10, 10, 5, 5}, 0,
			"0*200 + 0*100 + 0*50 + 0*20 + 0*10 + 0*5"},
		{"only-large", map[Nominal]uint{100: 4}, 45, []Nominal{}, 45,
			"0*200 + 4*100 + 0*50 + 0*20 + 0*10 + 0*5"},
		{"partial", map[Nominal]uint{100: 2, 5: 1}, 45, []Nominal{5}, 40,
			"0*200 + 2*100 + 0*50 + 0*20 + 0*10 + 0*5"},
		// 20+20+20 would fit, greedy takes 50 first and gets stuck
		{"no-backtrack", map[Nominal]uint{50: 1, 20: 3}, 60, []Nominal{50}, 10,
			"0*200 + 0*100 + 0*50 + 3*20 + 0*10 + 0*5"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			ng := NewNominalGroup(testNominals, 0)
			for n, count := range c.counts {
				ng.MustAdd(n, count)
			}
			before := ng.Total()
			out, rest := ng.Withdraw(c.amount)
			assert.Equal(t, c.expectOut, out)
			assert.Equal(t, c.expectRest, rest)
			assert.Equal(t, c.expectLeft, ng.Summary())
			sum := Amount(0)
			for _, n := range out {
				sum += Amount(n)
			}
			assert.Equal(t, c.amount, sum+rest)
			assert.Equal(t, before-sum, ng.Total())
		})
	}
}

func TestWithdrawDeterministic(t *testing.T) {
	t.Parallel()

	ng := NewNominalGroup(testNominals, 2)
	out1, rest1 := ng.Copy().Withdraw(385)
	out2, rest2 := ng.Copy().Withdraw(385)
	assert.Equal(t, out1, out2)
	assert.Equal(t, rest1, rest2)
	assert.Equal(t, []Nominal{200, 100, 50, 20, 10, 5}, out1)
}

func TestContains(t *testing.T) {
	t.Parallel()

	ng := createTestNominalGroup(t)
	assert.True(t, ng.Contains(0))
	assert.True(t, ng.Contains(35))
	assert.True(t, ng.Contains(1155))
	assert.False(t, ng.Contains(1160))
	assert.False(t, ng.Contains(3))
	assert.Equal(t, Amount(1155), ng.Total(), "Contains must not modify group")
}

func TestMarshalBinary(t *testing.T) {
	t.Parallel()

	ng := createTestNominalGroup(t)
	require.NoError(t, ng.Sub1(200))
	b, err := ng.MarshalBinary()
	require.NoError(t, err)

	restored := NewNominalGroup(testNominals, 0)
	require.NoError(t, restored.UnmarshalBinary(b))
	assert.Equal(t, ng.Summary(), restored.Summary())

	foreign := NewNominalGroup([]Nominal{1, 2}, 0)
	err = foreign.UnmarshalBinary(b)
	assert.Equal(t, ErrNominalInvalid, errors.Cause(err))
}
