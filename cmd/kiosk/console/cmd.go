// Package console is interactive kiosk: customer orders and operator commands.
package console

import (
	"context"
	"os"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/cmd/kiosk/subcmd"
	"github.com/temoto/vender-kiosk/helpers/cli"
	"github.com/temoto/vender-kiosk/internal/state"
)

var Mod = subcmd.Mod{Name: "console", Usage: "interactive orders and operator commands", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	g.Log.Debugf("config=%+v", g.Config)

	s := NewSession(g, os.Stdout)
	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Infof("kiosk ready, %d products, depot %s", g.Catalog.Len(), g.Engine.DepotSummary())

	exec := func(line string) {
		if err := s.Exec(ctx, line); err != nil {
			g.Log.Errorf(errors.ErrorStack(err))
		}
	}
	err := cli.MainLoop("kiosk", g.Stop, exec, s.Complete)
	if o := s.Order(); o != nil {
		g.Log.Infof("input closed with open order=%s", o.ID)
		_ = g.Engine.Abort(ctx, o)
	}
	subcmd.SdNotify(daemon.SdNotifyStopping)
	g.Stop()
	return errors.Annotate(err, "console input")
}
