// Package orderlog keeps settled orders.
// Orders since start are listed from memory. With persistent queue enabled,
// each record is also written to disk before RecordOrder returns and stays
// there until delivered by Drain.
package orderlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
	"github.com/temoto/spq"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/internal/order"
	"github.com/temoto/vender-kiosk/log2"
)

// OnlyForTesting queue path keeps queue in memory.
const OnlyForTesting = spq.OnlyForTesting

type Stat struct {
	Orders   uint32
	Revenue  currency.Amount
	Donation currency.Amount
	Returned currency.Amount
}

func (s Stat) String() string {
	return fmt.Sprintf("orders=%d revenue=%s donation=%s returned=%s",
		s.Orders, s.Revenue.Format100I(), s.Donation.Format100I(), s.Returned.Format100I())
}

type Log struct {
	log *log2.Log

	mu      sync.RWMutex
	q       *spq.Queue
	records []*Record
	stat    Stat
}

// Open path="" disables persistent queue.
func Open(path string, log *log2.Log) (*Log, error) {
	l := &Log{log: log}
	if path == "" {
		return l, nil
	}
	var err error
	l.q, err = spq.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "orderlog queue path=%s", path)
	}
	return l, nil
}

func (l *Log) Close() error {
	if l.q == nil {
		return nil
	}
	return errors.Annotate(l.q.Close(), "orderlog close")
}

// Persistent reports whether records go to durable queue.
func (l *Log) Persistent() bool { return l.q != nil }

func (l *Log) RecordOrder(ctx context.Context, o *order.Order) error {
	if !o.IsSettled() {
		panic(fmt.Sprintf("code error orderlog record open order=%s", o.ID))
	}
	r := NewRecord(o)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.q != nil {
		b, err := proto.Marshal(r)
		if err != nil {
			return errors.Annotatef(err, "orderlog marshal order=%s", o.ID)
		}
		if err = l.q.Push(b); err != nil {
			return errors.Annotatef(err, "orderlog push order=%s", o.ID)
		}
	}
	l.records = append(l.records, r)
	l.stat.Orders++
	l.stat.Revenue += o.Product.Price
	l.stat.Donation += o.DonationCents()
	l.stat.Returned += o.ReturnCents()
	l.log.Debugf("orderlog order=%s recorded %s", o.ID, l.stat.String())
	return nil
}

// Orders recorded since start, oldest first.
func (l *Log) Orders() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rs := make([]Record, len(l.records))
	for i, r := range l.records {
		rs[i] = *r
		rs[i].ThrownIn = append([]uint32(nil), r.ThrownIn...)
		rs[i].Returned = append([]uint32(nil), r.Returned...)
	}
	return rs
}

func (l *Log) Stat() Stat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stat
}

// Reset forgets in-memory listing and statistics, queued records stay.
func (l *Log) Reset() {
	l.mu.Lock()
	l.records = nil
	l.stat = Stat{}
	l.mu.Unlock()
}

// Drain delivers queued records with `send` until queue is closed or `stopch` is closed.
// send=false means delivery failed; record goes to the end of queue
// and is retried after `retry` delay.
func (l *Log) Drain(stopch <-chan struct{}, send func(payload []byte) bool, retry *helpers.Backoff) {
	if l.q == nil {
		panic("code error orderlog Drain without queue")
	}
	sleep := func(d time.Duration) bool {
		select {
		case <-time.After(d):
			return true
		case <-stopch:
			return false
		}
	}
	for {
		select {
		case <-stopch:
			return
		default:
		}

		box, err := l.q.Peek()
		switch err {
		case nil: // success path
			b := box.Bytes()
			if len(b) == 0 {
				l.log.Errorf("orderlog queue peek=empty")
				if err = l.q.Delete(box); err != nil {
					l.log.Errorf("orderlog queue Delete err=%v", err)
				}
				continue
			}
			if send(b) {
				retry.Update(true)
				if err = l.q.Delete(box); err != nil {
					l.log.Errorf("orderlog queue Delete b=%x err=%v", b, err)
				}
				continue
			}
			if err = l.q.DeletePush(box); err != nil {
				l.log.Errorf("orderlog queue DeletePush b=%x err=%v", b, err)
			}
			if !sleep(retry.DelayAfter(false)) {
				return
			}

		case spq.ErrClosed:
			return

		default:
			l.log.Errorf("CRITICAL orderlog queue err=%v", err)
			if !sleep(retry.DelayAfter(false)) {
				return
			}
		}
	}
}

func NewRecord(o *order.Order) *Record {
	return &Record{
		Id:          o.ID,
		Time:        o.Time.UnixNano(),
		ProductCode: o.Product.Code,
		ProductName: o.Product.Name,
		Price:       uint32(o.Product.Price),
		ThrownIn:    nominalsUint32(o.ThrownInCoins()),
		Returned:    nominalsUint32(o.ReturnCoins()),
		Donation:    uint32(o.DonationCents()),
	}
}

func ParseRecord(b []byte) (*Record, error) {
	r := &Record{}
	if err := proto.Unmarshal(b, r); err != nil {
		return nil, errors.Annotate(err, "orderlog record")
	}
	return r, nil
}

func (r *Record) ThrownInCents() currency.Amount { return sumUint32(r.ThrownIn) }
func (r *Record) ReturnCents() currency.Amount   { return sumUint32(r.Returned) }

// Format is one line for operator display.
func (r *Record) Format() string {
	returned := order.EmptyMarker
	if len(r.Returned) != 0 {
		returned = order.FormatCoinValues(uint32Nominals(r.Returned))
	}
	return fmt.Sprintf("%s %s %s price=%d thrown=%s return=%s donation=%d",
		time.Unix(0, r.Time).Format(time.RFC3339), r.Id, r.ProductName, r.Price,
		order.FormatCoinValues(uint32Nominals(r.ThrownIn)), returned, r.Donation)
}

func nominalsUint32(ns []currency.Nominal) []uint32 {
	if len(ns) == 0 {
		return nil
	}
	us := make([]uint32, len(ns))
	for i, n := range ns {
		us[i] = uint32(n)
	}
	return us
}

func uint32Nominals(us []uint32) []currency.Nominal {
	ns := make([]currency.Nominal, len(us))
	for i, u := range us {
		ns[i] = currency.Nominal(u)
	}
	return ns
}

func sumUint32(us []uint32) currency.Amount {
	sum := currency.Amount(0)
	for _, u := range us {
		sum += currency.Amount(u)
	}
	return sum
}
