package payment

import (
	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/internal/order"
)

// Settle finalizes paid order against the depot:
// - inserted coins go into depot first, so they are available as change
// - change is taken from depot largest coin first, see NominalGroup.Withdraw
// - change that can not be taken stays in the machine as donation
// Caller must own depot exclusively for the duration of call.
// Depot is not modified when error is returned.
func Settle(o *order.Order, depot *currency.NominalGroup) error {
	if o.IsSettled() {
		return errors.Annotatef(order.ErrSettled, "settle order=%s", o.ID)
	}
	if !o.IsPaid() {
		return errors.Annotatef(order.ErrNeedMoreMoney, "settle order=%s thrown=%s price=%s",
			o.ID, o.ThrownInCents().Format100I(), o.Product.Price.Format100I())
	}

	inserted := countNominals(o.ThrownInCoins())
	for n := range inserted {
		if !depot.IsValid(n) {
			return errors.Annotatef(currency.ErrNominalInvalid, "settle order=%s coin=%d", o.ID, n)
		}
	}
	for n, count := range inserted {
		depot.MustAdd(n, count)
	}

	change := o.ThrownInCents() - o.Product.Price
	returned, _ := depot.Withdraw(change)
	if err := o.Settle(returned); err != nil {
		panic("code error settle after checks: " + err.Error())
	}
	return nil
}

func countNominals(ns []currency.Nominal) map[currency.Nominal]uint {
	m := make(map[currency.Nominal]uint, len(ns))
	for _, n := range ns {
		m[n]++
	}
	return m
}
