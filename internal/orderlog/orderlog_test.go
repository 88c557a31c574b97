package orderlog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/internal/order"
	"github.com/temoto/vender-kiosk/log2"
)

func settledOrder(t testing.TB, price currency.Amount, thrown []currency.Nominal, returned []currency.Nominal) *order.Order {
	o, err := order.New(order.Product{Code: "latte", Name: "Latte", Price: price})
	require.NoError(t, err)
	for _, n := range thrown {
		_, err = o.InsertCoin(n)
		require.NoError(t, err)
	}
	require.NoError(t, o.Settle(returned))
	return o
}

func TestRecordMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, err := Open("", log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	defer l.Close()
	assert.False(t, l.Persistent())

	require.NoError(t, l.RecordOrder(ctx, settledOrder(t, 50, []currency.Nominal{100}, []currency.Nominal{20, 20, 10})))
	require.NoError(t, l.RecordOrder(ctx, settledOrder(t, 55, []currency.Nominal{100}, []currency.Nominal{20, 20})))

	rs := l.Orders()
	require.Len(t, rs, 2)
	assert.Equal(t, "latte", rs[0].ProductCode)
	assert.Equal(t, []uint32{20, 20, 10}, rs[0].Returned)
	assert.Equal(t, currency.Amount(50), rs[0].ReturnCents())
	assert.Equal(t, uint32(0), rs[0].Donation)
	assert.Equal(t, uint32(5), rs[1].Donation)
	assert.Contains(t, rs[1].Format(), "return=20;20 donation=5")

	rs[0].Returned[0] = 1
	assert.Equal(t, uint32(20), l.Orders()[0].Returned[0], "Orders must return copy")

	assert.Equal(t, Stat{Orders: 2, Revenue: 105, Donation: 5, Returned: 90}, l.Stat())
	l.Reset()
	assert.Len(t, l.Orders(), 0)
	assert.Equal(t, Stat{}, l.Stat())
}

func TestRecordOpenOrderPanics(t *testing.T) {
	t.Parallel()

	l, err := Open("", log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	o, err := order.New(order.Product{Code: "x", Price: 1})
	require.NoError(t, err)
	assert.Panics(t, func() { _ = l.RecordOrder(context.Background(), o) })
}

func TestRecordEmptyReturnFormat(t *testing.T) {
	t.Parallel()

	o := settledOrder(t, 50, []currency.Nominal{50}, nil)
	r := NewRecord(o)
	assert.Nil(t, r.Returned)
	assert.Contains(t, r.Format(), "thrown=50 return=0 donation=0")
}

func TestDrain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, err := Open(OnlyForTesting, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	assert.True(t, l.Persistent())

	orders := []*order.Order{
		settledOrder(t, 50, []currency.Nominal{50}, nil),
		settledOrder(t, 65, []currency.Nominal{100}, []currency.Nominal{20, 10, 5}),
	}
	for _, o := range orders {
		require.NoError(t, l.RecordOrder(ctx, o))
	}

	var mu sync.Mutex
	got := []*Record{}
	attempts := 0
	done := make(chan struct{})
	go func() {
		l.Drain(nil, func(b []byte) bool {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			// first delivery fails, record goes back to queue
			if attempts == 1 {
				return false
			}
			r, err := ParseRecord(b)
			if !assert.NoError(t, err) {
				return true
			}
			got = append(got, r)
			return true
		}, &helpers.Backoff{Min: time.Millisecond, Max: 10 * time.Millisecond, K: 2})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(orders)
	}, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, l.Close())
	<-done

	ids := []string{got[0].Id, got[1].Id}
	assert.ElementsMatch(t, []string{orders[0].ID, orders[1].ID}, ids)
	for _, r := range got {
		if r.Id == orders[1].ID {
			assert.Equal(t, []uint32{100}, r.ThrownIn)
			assert.Equal(t, []uint32{20, 10, 5}, r.Returned)
			assert.Equal(t, orders[1].Time.UnixNano(), r.Time)
		}
	}
}
