package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/internal/catalog"
	"github.com/temoto/vender-kiosk/internal/tele"
	"github.com/temoto/vender-kiosk/log2"
)

const DefaultDepotInitCount = 3

var DefaultNominals = []int{5, 10, 20, 50, 100, 200}

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Money struct {
		Scale    int   `hcl:"scale"`
		Nominals []int `hcl:"nominals"`
		// nil = DefaultDepotInitCount
		XXX_DepotInitCount *int `hcl:"depot_init_count"`
	}
	Catalog struct {
		Items []CatalogItem `hcl:"item"`
	}
	Persist struct {
		Root  string `hcl:"root"`
		Depot bool   `hcl:"depot"`
	}
	OrderLog struct {
		// "" = only in memory, no delivery
		Path string `hcl:"path"`
	} `hcl:"order_log"`
	Tele tele.Config

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

type CatalogItem struct {
	Code      string `hcl:"code,key"`
	Name      string `hcl:"name"`
	XXX_Price int    `hcl:"price"` // use ScaleI, this is for decoding config only
}

func (c *Config) ScaleI(i int) currency.Amount {
	return currency.Amount(i) * currency.Amount(c.Money.Scale)
}

func (c *Config) DepotInitCount() uint {
	if c.Money.XXX_DepotInitCount == nil {
		return DefaultDepotInitCount
	}
	return uint(*c.Money.XXX_DepotInitCount)
}

// Nominals scaled, in config order.
func (c *Config) Nominals() []currency.Nominal {
	ns := make([]currency.Nominal, len(c.Money.Nominals))
	for i, n := range c.Money.Nominals {
		ns[i] = currency.Nominal(c.ScaleI(n))
	}
	return ns
}

func (c *Config) CatalogItems() []catalog.Item {
	items := make([]catalog.Item, len(c.Catalog.Items))
	for i, x := range c.Catalog.Items {
		items[i] = catalog.Item{Code: x.Code, Name: x.Name, Price: c.ScaleI(x.XXX_Price)}
	}
	return items
}

// Validate fills defaults and checks values, catalog is checked by catalog.New.
func (c *Config) Validate(log *log2.Log) error {
	errs := make([]error, 0)
	if c.Money.Scale == 0 {
		c.Money.Scale = 1
		log.Debugf("config: money.scale is not set, using 1")
	} else if c.Money.Scale < 0 {
		errs = append(errs, errors.NotValidf("config: money.scale=%d < 0", c.Money.Scale))
	}

	if len(c.Money.Nominals) == 0 {
		c.Money.Nominals = append([]int(nil), DefaultNominals...)
		log.Debugf("config: money.nominals is not set, using %v", c.Money.Nominals)
	}
	seen := make(map[int]struct{}, len(c.Money.Nominals))
	for _, n := range c.Money.Nominals {
		if n <= 0 {
			errs = append(errs, errors.NotValidf("config: money.nominals value=%d must be positive", n))
			continue
		}
		if _, ok := seen[n]; ok {
			errs = append(errs, errors.NotValidf("config: money.nominals duplicate value=%d", n))
			continue
		}
		seen[n] = struct{}{}
	}

	if p := c.Money.XXX_DepotInitCount; p != nil && *p < 0 {
		errs = append(errs, errors.NotValidf("config: money.depot_init_count=%d < 0", *p))
	}

	for _, x := range c.Catalog.Items {
		if x.XXX_Price < 0 {
			errs = append(errs, errors.NotValidf("config: catalog item code=%s price=%d", x.Code, x.XXX_Price))
		}
	}

	if c.Persist.Depot && c.Persist.Root == "" {
		errs = append(errs, errors.NotValidf("config: persist.depot=true requires persist.root"))
	}
	if c.Tele.Enabled && c.OrderLog.Path == "" {
		errs = append(errs, errors.NotValidf("config: tele.enable=true requires order_log.path"))
	}
	return helpers.FoldErrors(errs)
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
