package currency

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errors"
)

// Amount is integer counting lowest currency unit, e.g. $1.20 = 120
type Amount uint32

func (self Amount) Format100I() string { return fmt.Sprint(float32(self) / 100) }
func (self Amount) FormatCtx(ctx context.Context) string {
	return self.Format100I()
}

// Nominal is value of one coin
type Nominal Amount

var (
	ErrNominalInvalid = errors.New("Nominal is not valid for this group")
	ErrNominalCount   = errors.New("Not enough nominals for this amount")
)

// NominalGroup operates money comprised of multiple nominals, like coins in the depot.
// coin5  : 3
// coin10 : 1
// coin20 : 4
// total  : 105
// Set of valid nominals is fixed by SetValid, counts never go negative.
// NominalGroup is not safe for concurrent use; owner serializes access.
type NominalGroup struct {
	values map[Nominal]uint
}

func NewNominalGroup(valid []Nominal, count uint) *NominalGroup {
	ng := &NominalGroup{}
	ng.SetValid(valid)
	ng.Reset(count)
	return ng
}

func (self *NominalGroup) Copy() *NominalGroup {
	ng2 := &NominalGroup{
		values: make(map[Nominal]uint, len(self.values)),
	}
	for k, v := range self.values {
		ng2.values[k] = v
	}
	return ng2
}

func (self *NominalGroup) SetValid(valid []Nominal) {
	self.values = make(map[Nominal]uint, len(valid))
	for _, n := range valid {
		if n != 0 {
			self.values[n] = 0
		}
	}
}

func (self *NominalGroup) IsValid(n Nominal) bool {
	_, ok := self.values[n]
	return ok
}

// Add credits `count` coins of nominal `n`.
func (self *NominalGroup) Add(n Nominal, count uint) error {
	if _, ok := self.values[n]; !ok {
		return errors.Annotatef(ErrNominalInvalid, "Add(n=%d, c=%d)", n, count)
	}
	self.values[n] += count
	return nil
}

func (self *NominalGroup) MustAdd(n Nominal, count uint) {
	if err := self.Add(n, count); err != nil {
		panic("code error " + err.Error())
	}
}

// Sub1 debits one coin of nominal `n`. Count at zero is an error, never clamped.
func (self *NominalGroup) Sub1(n Nominal) error {
	stored, ok := self.values[n]
	if !ok {
		return errors.Annotatef(ErrNominalInvalid, "Sub1(n=%d)", n)
	}
	if stored == 0 {
		return errors.Annotatef(ErrNominalCount, "Sub1(n=%d)", n)
	}
	self.values[n] = stored - 1
	return nil
}

func (self *NominalGroup) Clear() { self.Reset(0) }

// Reset sets count of every valid nominal.
func (self *NominalGroup) Reset(count uint) {
	for n := range self.values {
		self.values[n] = count
	}
}

func (self *NominalGroup) Get(n Nominal) (uint, error) {
	if stored, ok := self.values[n]; !ok {
		return 0, ErrNominalInvalid
	} else {
		return stored, nil
	}
}

// Nominals returns valid nominals, highest first.
func (self *NominalGroup) Nominals() []Nominal {
	order := make([]Nominal, 0, len(self.values))
	for n := range self.values {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] > order[j] })
	return order
}

// Iter visits nominals highest first.
func (self *NominalGroup) Iter(f func(nominal Nominal, count uint) error) error {
	for _, nominal := range self.Nominals() {
		if err := f(nominal, self.values[nominal]); err != nil {
			return err
		}
	}
	return nil
}

func (self *NominalGroup) Total() Amount {
	sum := Amount(0)
	for nominal, count := range self.values {
		sum += Amount(nominal) * Amount(count)
	}
	return sum
}

// Contains reports whether exact `a` can be withdrawn. Does not modify group.
func (self *NominalGroup) Contains(a Amount) bool {
	_, rest := self.Copy().Withdraw(a)
	return rest == 0
}

// Withdraw takes coins for `amount` from the group, one at a time:
// for each nominal from highest to lowest, while nominal fits into the
// remaining amount and stock is available.
// No backtracking, so result is not always minimal or even possible.
// Returns taken coins in selection order and amount that could not be taken.
func (self *NominalGroup) Withdraw(amount Amount) ([]Nominal, Amount) {
	taken := make([]Nominal, 0, 8)
	for _, n := range self.Nominals() {
		for amount > 0 && Amount(n) <= amount && self.values[n] > 0 {
			if err := self.Sub1(n); err != nil {
				panic("code error Withdraw stock check: " + err.Error())
			}
			taken = append(taken, n)
			amount -= Amount(n)
		}
	}
	return taken, amount
}

func (self *NominalGroup) String() string {
	parts := make([]string, 0, len(self.values)+1)
	sum := Amount(0)
	for nominal, count := range self.values {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", Amount(nominal).Format100I(), count))
			sum += Amount(nominal) * Amount(count)
		}
	}
	sort.Strings(parts)
	parts = append(parts, fmt.Sprintf("total:%s", sum.Format100I()))
	return strings.Join(parts, ",")
}

// Summary is human readable count per nominal, highest first, e.g.
// "3*200 + 4*100 + 3*50 + 2*20 + 2*10 + 2*5"
func (self *NominalGroup) Summary() string {
	nominals := self.Nominals()
	parts := make([]string, 0, len(nominals))
	for _, n := range nominals {
		parts = append(parts, fmt.Sprintf("%d*%d", self.values[n], n))
	}
	return strings.Join(parts, " + ")
}

func (self *NominalGroup) ToMapUint32(m map[uint32]uint32) {
	for nominal, count := range self.values {
		m[uint32(nominal)] = uint32(count)
	}
}

// FromMapUint32 sets counts for listed nominals, others keep their value.
func (self *NominalGroup) FromMapUint32(m map[uint32]uint32) error {
	for nominal := range m {
		n := Nominal(nominal)
		if _, ok := self.values[n]; !ok {
			return errors.Annotatef(ErrNominalInvalid, "FromMapUint32(n=%d)", n)
		}
	}
	for nominal, count := range m {
		self.values[Nominal(nominal)] = uint(count)
	}
	return nil
}
