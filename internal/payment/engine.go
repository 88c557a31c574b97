// Package payment binds customer orders to the machine coin depot.
// Overview:
// - NewOrder: customer selected product
// - InsertCoin: coin validator reported a coin, true when enough
// - Settle: coins go to depot, change comes out of depot, order is recorded
// Depot is shared by all orders, Engine serializes every access to it.
package payment

import (
	"context"
	"encoding"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/internal/order"
	"github.com/temoto/vender-kiosk/log2"
)

type Catalog interface {
	Lookup(code string) (order.Product, error)
}

// Recorder receives each order once, after settlement, in settlement sequence.
// Called with depot locked, must not call back into Engine.
type Recorder interface {
	RecordOrder(ctx context.Context, o *order.Order) error
}

// DepotStore is durable copy of depot counts, see state/persist.
type DepotStore interface {
	Load() error
	Store() error
}

type Engine struct {
	Log *log2.Log

	mu        sync.Mutex
	depot     *currency.NominalGroup
	initCount uint
	catalog   Catalog
	recorder  Recorder
	store     DepotStore
}

// NewEngine depot starts with `initCount` coins of each nominal.
func NewEngine(log *log2.Log, nominals []currency.Nominal, initCount uint, catalog Catalog, recorder Recorder) *Engine {
	if catalog == nil {
		panic("code error payment.NewEngine catalog=nil")
	}
	return &Engine{
		Log:       log,
		depot:     currency.NewNominalGroup(nominals, initCount),
		initCount: initCount,
		catalog:   catalog,
		recorder:  recorder,
	}
}

// DepotStater is depot view for persist. Only valid for SetStore.
func (e *Engine) DepotStater() interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
} {
	return lockedDepot{e}
}

// SetStore binds durable storage and loads depot counts from it.
func (e *Engine) SetStore(store DepotStore) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = store
	if store == nil {
		return nil
	}
	return errors.Annotate(store.Load(), "payment depot load")
}

func (e *Engine) NewOrder(ctx context.Context, code string) (*order.Order, error) {
	p, err := e.catalog.Lookup(code)
	if err != nil {
		return nil, errors.Annotate(err, "payment new order")
	}
	o, err := order.New(p)
	if err != nil {
		return nil, errors.Annotate(err, "payment new order")
	}
	e.Log.Debugf("payment order=%s begin %s", o.ID, p.String())
	return o, nil
}

// InsertCoin adds coin to open order. True when order is paid and may be settled.
// Zero is ignored. Negative value and nominal unknown to depot are rejected.
func (e *Engine) InsertCoin(ctx context.Context, o *order.Order, value int64) (bool, error) {
	n, err := order.CoinFromInt(value)
	if err != nil {
		return false, errors.Annotatef(err, "order=%s", o.ID)
	}
	if n != 0 {
		e.mu.Lock()
		valid := e.depot.IsValid(n)
		e.mu.Unlock()
		if !valid {
			return false, errors.Annotatef(currency.ErrNominalInvalid, "order=%s coin=%d", o.ID, n)
		}
	}
	done, err := o.InsertCoin(n)
	if err != nil {
		return false, err
	}
	e.Log.Debugf("payment order=%s coin=%d thrown=%s price=%s done=%t",
		o.ID, n, o.ThrownInCents().FormatCtx(ctx), o.Product.Price.FormatCtx(ctx), done)
	return done, nil
}

// Settle runs settlement, stores depot and records order.
// Error is returned only for contract violation, then nothing is changed.
// Storage failures are logged, order stays settled.
func (e *Engine) Settle(ctx context.Context, o *order.Order) error {
	e.mu.Lock()
	err := Settle(o, e.depot)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	summary := e.depot.Summary()
	e.locked_store()
	// recorded under depot lock, so order log sequence equals settlement sequence
	if e.recorder != nil {
		if err := e.recorder.RecordOrder(ctx, o); err != nil {
			e.Log.Errorf("payment order=%s record err=%v", o.ID, errors.ErrorStack(err))
		}
	}
	e.mu.Unlock()

	e.Log.Debugf("payment order=%s settled thrown=%s return=%s donation=%s depot=%s",
		o.ID, o.ThrownInCoinValues(), o.ReturnCoinValues(), o.DonationCents().FormatCtx(ctx), summary)
	if donation := o.DonationCents(); donation != 0 {
		e.Log.Infof("payment order=%s no change available, donation=%s", o.ID, donation.FormatCtx(ctx))
	}
	return nil
}

// Abort forgets open order. Inserted coins were never counted in depot.
func (e *Engine) Abort(ctx context.Context, o *order.Order) error {
	if o.IsSettled() {
		return errors.Annotatef(order.ErrSettled, "abort order=%s", o.ID)
	}
	e.Log.Infof("payment order=%s abort thrown=%s", o.ID, o.ThrownInCents().FormatCtx(ctx))
	return nil
}

// Buy is NewOrder, InsertCoin until paid, Settle.
// Not enough coins: returns open order and ErrNeedMoreMoney.
func (e *Engine) Buy(ctx context.Context, code string, coins ...int64) (*order.Order, error) {
	o, err := e.NewOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	done := false
	for _, c := range coins {
		if done, err = e.InsertCoin(ctx, o, c); err != nil {
			return o, err
		}
	}
	if !done {
		return o, errors.Annotatef(order.ErrNeedMoreMoney, "buy order=%s thrown=%s price=%s",
			o.ID, o.ThrownInCents().FormatCtx(ctx), o.Product.Price.FormatCtx(ctx))
	}
	return o, e.Settle(ctx, o)
}

// Depot returns copy of current depot.
func (e *Engine) Depot() *currency.NominalGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depot.Copy()
}

func (e *Engine) DepotSummary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depot.Summary()
}

// Reload refills depot to initial count of each nominal.
func (e *Engine) Reload(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	before := e.depot.Total()
	e.depot.Reset(e.initCount)
	e.Log.Infof("payment depot reload before=%s after=%s", before.FormatCtx(ctx), e.depot.Total().FormatCtx(ctx))
	e.locked_store()
}

func (e *Engine) locked_store() {
	if e.store == nil {
		return
	}
	if err := e.store.Store(); err != nil {
		e.Log.Errorf("payment depot store err=%v", errors.ErrorStack(err))
	}
}

// Persist calls these from SetStore/locked_store, e.mu is held.
type lockedDepot struct{ e *Engine }

func (d lockedDepot) MarshalBinary() ([]byte, error) { return d.e.depot.MarshalBinary() }
func (d lockedDepot) UnmarshalBinary(b []byte) error { return d.e.depot.UnmarshalBinary(b) }
