// Package order is one customer transaction: selected product, inserted coins
// and, once settled, returned coins.
// Lifecycle: Open (accepting coins) -> Settled (terminal).
// Open order may be abandoned at any time, it owns no shared state.
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/currency"
)

var (
	ErrSettled       = errors.New("order is settled")
	ErrNeedMoreMoney = errors.New("add-money")
	ErrPriceInvalid  = errors.NotValidf("product price must be positive")
	ErrCoinNegative  = errors.NotValidf("coin value must not be negative")
)

type Product struct {
	Code  string
	Name  string
	Price currency.Amount
}

func (p Product) String() string {
	return fmt.Sprintf("product(code=%s name=%s price=%s)", p.Code, p.Name, p.Price.Format100I())
}

type State uint8

const (
	StateOpen State = iota
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSettled:
		return "settled"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type Order struct {
	ID      string
	Time    time.Time
	Product Product

	state    State
	thrownIn []currency.Nominal
	returned []currency.Nominal
}

func New(p Product) (*Order, error) {
	if p.Price == 0 {
		return nil, errors.Annotatef(ErrPriceInvalid, "product=%s", p.Code)
	}
	o := &Order{
		ID:      uuid.New().String(),
		Time:    time.Now(),
		Product: p,
	}
	return o, nil
}

func (o *Order) State() State    { return o.state }
func (o *Order) IsSettled() bool { return o.state == StateSettled }

// InsertCoin accepts coin into running total while it is below price.
// Coin after price is reached is ignored. Zero value is ignored.
// Returns true when inserted total covers the price.
func (o *Order) InsertCoin(n currency.Nominal) (bool, error) {
	if o.state != StateOpen {
		return false, errors.Annotatef(ErrSettled, "order=%s InsertCoin(%d)", o.ID, n)
	}
	if n == 0 {
		return false, nil
	}
	if o.ThrownInCents() < o.Product.Price {
		o.thrownIn = append(o.thrownIn, n)
	}
	return o.IsPaid(), nil
}

func (o *Order) IsPaid() bool { return o.ThrownInCents() >= o.Product.Price }

// Settle fixes returned coins and closes the order.
// Callers outside payment settlement have no business here.
func (o *Order) Settle(returned []currency.Nominal) error {
	if o.state != StateOpen {
		return errors.Annotatef(ErrSettled, "order=%s", o.ID)
	}
	if !o.IsPaid() {
		return errors.Annotatef(ErrNeedMoreMoney, "order=%s thrown=%s price=%s",
			o.ID, o.ThrownInCents().Format100I(), o.Product.Price.Format100I())
	}
	sum := sumNominals(returned)
	if sum > o.ThrownInCents()-o.Product.Price {
		panic(fmt.Sprintf("code error order=%s return=%d exceeds change=%d", o.ID, sum, o.ThrownInCents()-o.Product.Price))
	}
	o.returned = append([]currency.Nominal(nil), returned...)
	o.state = StateSettled
	return nil
}

func (o *Order) ThrownInCoins() []currency.Nominal {
	return append([]currency.Nominal(nil), o.thrownIn...)
}

// ReturnCoins in order of selection, highest first. Empty when nothing is returned.
func (o *Order) ReturnCoins() []currency.Nominal {
	return append([]currency.Nominal(nil), o.returned...)
}

func (o *Order) ThrownInCents() currency.Amount { return sumNominals(o.thrownIn) }
func (o *Order) ReturnCents() currency.Amount   { return sumNominals(o.returned) }

// DonationCents is change owed but not returned for lack of coins.
// Zero until settled.
func (o *Order) DonationCents() currency.Amount {
	if o.state != StateSettled {
		return 0
	}
	return o.ThrownInCents() - o.Product.Price - o.ReturnCents()
}

func (o *Order) ThrownInCoinValues() string { return FormatCoinValues(o.thrownIn) }

// ReturnCoinValues is "0" when nothing is returned.
func (o *Order) ReturnCoinValues() string {
	if len(o.returned) == 0 {
		return EmptyMarker
	}
	return FormatCoinValues(o.returned)
}

func (o *Order) String() string {
	return fmt.Sprintf("order(id=%s %s state=%s thrown=%s return=%s donation=%s)",
		o.ID, o.Product.Code, o.state, o.ThrownInCoinValues(), o.ReturnCoinValues(), o.DonationCents().Format100I())
}

func sumNominals(ns []currency.Nominal) currency.Amount {
	sum := currency.Amount(0)
	for _, n := range ns {
		sum += currency.Amount(n)
	}
	return sum
}
