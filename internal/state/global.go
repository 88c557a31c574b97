package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/internal/catalog"
	"github.com/temoto/vender-kiosk/internal/orderlog"
	"github.com/temoto/vender-kiosk/internal/payment"
	"github.com/temoto/vender-kiosk/internal/state/persist"
	"github.com/temoto/vender-kiosk/internal/tele"
	"github.com/temoto/vender-kiosk/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Catalog      *catalog.Catalog
	Engine       *payment.Engine
	Log          *log2.Log
	OrderLog     *orderlog.Log
	Tele         *tele.Tele

	depotPersist persist.Persist
	errorCount   uint32
	errorsMu     sync.Mutex
	stopOnce     sync.Once

	_copy_guard sync.Mutex //nolint:unused
}

const ContextKey = "run/state-global"

func NewContext(log *log2.Log, tl *tele.Tele) (context.Context, *Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}
	if tl == nil {
		tl = tele.New()
	}

	g := &Global{
		Alive: alive.NewAlive(),
		Log:   log,
		Tele:  tl,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, log2.ContextKey, log)
	ctx = context.WithValue(ctx, ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	g.Log.Debugf("build version=%s", g.BuildVersion)

	if err := g.Config.Validate(g.Log); err != nil {
		return errors.Annotate(err, "config")
	}

	var err error
	g.Catalog, err = catalog.New(g.Config.CatalogItems())
	if err != nil {
		return errors.Annotate(err, "config catalog")
	}

	path := g.Config.OrderLog.Path
	if path != "" && path != orderlog.OnlyForTesting && !filepath.IsAbs(path) && g.Config.Persist.Root != "" {
		path = filepath.Join(g.Config.Persist.Root, path)
	}
	g.OrderLog, err = orderlog.Open(path, g.Log)
	if err != nil {
		return errors.Annotate(err, "order log")
	}

	// Tele.Init gets g.Log clone before SetErrorFunc, so Tele.Log.Error doesn't recurse on itself
	if err = g.Tele.Init(ctx, g.Log.Clone(log2.LInfo), g.Config.Tele, g.OrderLog); err != nil {
		return errors.Annotate(err, "tele init")
	}
	g.Log.SetErrorFunc(g.countError)

	g.Engine = payment.NewEngine(g.Log, g.Config.Nominals(), g.Config.DepotInitCount(), g.Catalog, g.OrderLog)
	if err = g.depotPersist.Init("depot", g.Engine.DepotStater(), g.Config.Persist.Root, g.Config.Persist.Depot, g.Log); err != nil {
		return errors.Annotate(err, "depot persist")
	}
	if g.depotPersist.Enabled() {
		if err = g.Engine.SetStore(&g.depotPersist); err != nil {
			return errors.Annotate(err, "depot persist")
		}
	}
	g.Log.Debugf("depot %s", g.Engine.DepotSummary())
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Fatal(err)
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(err)
	}
}

// Errors is count of errors logged since start.
func (g *Global) Errors() uint32 {
	g.errorsMu.Lock()
	defer g.errorsMu.Unlock()
	return g.errorCount
}

func (g *Global) countError(error) {
	g.errorsMu.Lock()
	g.errorCount++
	g.errorsMu.Unlock()
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(errors.ErrorStack(err))
		os.Exit(1)
	}
}

// Stop closes order log, tele and then marks Alive stopped.
func (g *Global) Stop() {
	g.stopOnce.Do(func() {
		added := g.Alive.Add(1)
		g.Alive.Stop()

		errs := make([]error, 0, 1)
		if g.OrderLog != nil {
			errs = append(errs, g.OrderLog.Close())
		}
		if g.Tele != nil {
			g.Tele.Close()
		}
		if err := helpers.FoldErrors(errs); err != nil {
			g.Log.Errorf("stop err=%v", err)
		}
		if added {
			g.Alive.Done()
		}
	})
}

func (g *Global) StopWait(timeout time.Duration) bool {
	go g.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}

func (g *Global) Wait() { g.Alive.Wait() }
