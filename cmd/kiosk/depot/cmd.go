// Package depot prints persisted coin depot for operator.
package depot

import (
	"context"
	"fmt"

	"github.com/temoto/vender-kiosk/cmd/kiosk/subcmd"
	"github.com/temoto/vender-kiosk/currency"
	"github.com/temoto/vender-kiosk/internal/state"
)

var Mod = subcmd.Mod{Name: "depot", Usage: "print coin depot and exit", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	if err := g.Init(ctx, config); err != nil {
		return err
	}
	defer g.Stop()

	d := g.Engine.Depot()
	_ = d.Iter(func(n currency.Nominal, count uint) error {
		fmt.Printf("%s\t%d\n", currency.Amount(n).FormatCtx(ctx), count)
		return nil
	})
	fmt.Printf("total\t%s\n%s\n", d.Total().FormatCtx(ctx), d.Summary())
	return nil
}
