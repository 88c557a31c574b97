// Package catalog is read-only product list, built from config.
package catalog

import (
	"sort"

	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/internal/order"
)

type Item struct {
	Code  string
	Name  string
	Price currency.Amount
}

type Catalog struct {
	byCode map[string]order.Product
	codes  []string
}

// New validates items: code is unique, price is positive.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		byCode: make(map[string]order.Product, len(items)),
		codes:  make([]string, 0, len(items)),
	}
	errs := make([]error, 0)
	for _, item := range items {
		if item.Code == "" {
			errs = append(errs, errors.NotValidf("catalog item code=(empty) name=%s", item.Name))
			continue
		}
		if _, ok := c.byCode[item.Code]; ok {
			errs = append(errs, errors.AlreadyExistsf("catalog item code=%s", item.Code))
			continue
		}
		if item.Price == 0 {
			errs = append(errs, errors.Annotatef(order.ErrPriceInvalid, "catalog item code=%s", item.Code))
			continue
		}
		name := item.Name
		if name == "" {
			name = item.Code
		}
		c.byCode[item.Code] = order.Product{Code: item.Code, Name: name, Price: item.Price}
		c.codes = append(c.codes, item.Code)
	}
	if len(errs) != 0 {
		return nil, helpers.FoldErrors(errs)
	}
	sort.Strings(c.codes)
	return c, nil
}

func (c *Catalog) Lookup(code string) (order.Product, error) {
	if p, ok := c.byCode[code]; ok {
		return p, nil
	}
	return order.Product{}, errors.NotFoundf("product code=%s", code)
}

// List is all products ordered by code.
func (c *Catalog) List() []order.Product {
	ps := make([]order.Product, 0, len(c.codes))
	for _, code := range c.codes {
		ps = append(ps, c.byCode[code])
	}
	return ps
}

func (c *Catalog) Len() int { return len(c.codes) }
