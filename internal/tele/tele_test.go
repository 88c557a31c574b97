package tele_test

import (
	"context"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/internal/order"
	"github.com/temoto/vender-kiosk/internal/orderlog"
	"github.com/temoto/vender-kiosk/internal/tele"
	"github.com/temoto/vender-kiosk/log2"
)

func newSettled(t testing.TB, code string, price currency.Amount, coins ...currency.Nominal) *order.Order {
	o, err := order.New(order.Product{Code: code, Name: code, Price: price})
	require.NoError(t, err)
	for _, c := range coins {
		_, err = o.InsertCoin(c)
		require.NoError(t, err)
	}
	require.NoError(t, o.Settle(nil))
	return o
}

func TestDeliverOrders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fail func(attempt int, payload []byte) bool
	}{
		{"ok", nil},
		{"retry", func(attempt int, _ []byte) bool { return attempt <= 2 }},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			log := log2.NewTest(t, log2.LDebug)
			orders, err := orderlog.Open(orderlog.OnlyForTesting, log)
			require.NoError(t, err)

			mock := tele.NewMockTransport(8)
			mock.Fail = c.fail
			tl := tele.NewWithTransporter(mock)
			require.NoError(t, tl.Init(ctx, log, tele.Config{Enabled: true, VmId: 7}, orders))
			assert.True(t, tl.Enabled())

			o1 := newSettled(t, "latte", 50, 50)
			o2 := newSettled(t, "water", 20, 10, 10)
			require.NoError(t, orders.RecordOrder(ctx, o1))
			require.NoError(t, orders.RecordOrder(ctx, o2))

			got := map[string]*orderlog.Record{}
			for len(got) < 2 {
				select {
				case b := <-mock.Ch:
					r, err := orderlog.ParseRecord(b)
					require.NoError(t, err)
					got[r.Id] = r
				case <-time.After(10 * time.Second):
					t.Fatal("timeout waiting for order delivery")
				}
			}
			require.Contains(t, got, o1.ID)
			require.Contains(t, got, o2.ID)
			assert.Equal(t, "water", got[o2.ID].ProductCode)
			assert.Equal(t, []uint32{10, 10}, got[o2.ID].ThrownIn)

			require.NoError(t, orders.Close())
			tl.Close()
			stat := tl.Stat()
			assert.Equal(t, uint32(2), stat.Sent)
			if c.fail != nil {
				assert.Equal(t, uint32(2), stat.Failed)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	mock := tele.NewMockTransport(1)
	tl := tele.NewWithTransporter(mock)
	require.NoError(t, tl.Init(context.Background(), log2.NewTest(t, log2.LDebug), tele.Config{}, nil))
	assert.False(t, tl.Enabled())
	tl.Close()
	assert.Equal(t, 0, mock.Attempts())
}

func TestEnabledWithoutQueue(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	orders, err := orderlog.Open("", log)
	require.NoError(t, err)
	tl := tele.NewWithTransporter(tele.NewMockTransport(1))
	err = tl.Init(context.Background(), log, tele.Config{Enabled: true}, orders)
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(err))
}

func TestTopics(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "vm7/w/order", tele.TopicOrder(7))
	assert.Equal(t, "vm-3/c", tele.TopicConnect(-3))
}
