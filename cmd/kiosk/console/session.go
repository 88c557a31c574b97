package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/internal/order"
	"github.com/temoto/vender-kiosk/internal/state"
)

const usage = `commands:
- menu         list products
- order CODE   begin order
- coin N       insert coin of value N, order is settled when enough
- abort        cancel current order
- depot        show coins in machine
- reload       refill depot to initial count
- reset        reload and clear order list
- orders       list orders since start
- help         this text
`

var ErrOrderBusy = errors.New("previous order is not finished, use abort")

// Session is one operator console, it holds at most one open order.
type Session struct {
	g     *state.Global
	out   io.Writer
	order *order.Order
}

func NewSession(g *state.Global, out io.Writer) *Session {
	return &Session{g: g, out: out}
}

// Order is current open order or nil.
func (s *Session) Order() *order.Order { return s.order }

func (s *Session) Exec(ctx context.Context, line string) error {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	cmd, args := words[0], words[1:]
	argc := func(n int) error {
		if len(args) != n {
			return errors.NotValidf("command=%s expected %d arguments, got %d", cmd, n, len(args))
		}
		return nil
	}

	switch cmd {
	case "help", "/help":
		s.printf("%s", usage)
		return nil

	case "menu":
		for _, p := range s.g.Catalog.List() {
			s.printf("%s\t%s\t%s\n", p.Code, p.Name, p.Price.FormatCtx(ctx))
		}
		return nil

	case "order":
		if err := argc(1); err != nil {
			return err
		}
		if s.order != nil {
			return errors.Annotatef(ErrOrderBusy, "order=%s", s.order.ID)
		}
		o, err := s.g.Engine.NewOrder(ctx, args[0])
		if err != nil {
			return err
		}
		s.order = o
		s.printf("order %s %s price=%s\n", o.ID, o.Product.Name, o.Product.Price.FormatCtx(ctx))
		return nil

	case "coin":
		if err := argc(1); err != nil {
			return err
		}
		if s.order == nil {
			return errors.NotFoundf("open order")
		}
		n, err := order.ParseCoin(args[0])
		if err != nil {
			return err
		}
		done, err := s.g.Engine.InsertCoin(ctx, s.order, int64(n))
		if err != nil {
			return err
		}
		if !done {
			s.printf("thrown=%s price=%s\n", s.order.ThrownInCents().FormatCtx(ctx), s.order.Product.Price.FormatCtx(ctx))
			return nil
		}
		o := s.order
		if err = s.g.Engine.Settle(ctx, o); err != nil {
			return err
		}
		s.order = nil
		s.printf("settled %s thrown=%s return=%s donation=%s\n",
			o.Product.Name, o.ThrownInCoinValues(), o.ReturnCoinValues(), o.DonationCents().FormatCtx(ctx))
		return nil

	case "abort":
		if s.order == nil {
			return errors.NotFoundf("open order")
		}
		if err := s.g.Engine.Abort(ctx, s.order); err != nil {
			return err
		}
		s.printf("aborted %s, take back %s\n", s.order.ID, s.order.ThrownInCoinValues())
		s.order = nil
		return nil

	case "depot":
		s.printf("%s\ntotal=%s\n", s.g.Engine.DepotSummary(), s.g.Engine.Depot().Total().FormatCtx(ctx))
		return nil

	case "reload":
		s.g.Engine.Reload(ctx)
		s.printf("%s\n", s.g.Engine.DepotSummary())
		return nil

	case "reset":
		s.g.Engine.Reload(ctx)
		s.g.OrderLog.Reset()
		s.printf("%s\norders cleared\n", s.g.Engine.DepotSummary())
		return nil

	case "orders":
		for _, r := range s.g.OrderLog.Orders() {
			s.printf("%s\n", r.Format())
		}
		s.printf("%s\n", s.g.OrderLog.Stat().String())
		return nil
	}
	return errors.NotFoundf("command=%s, try help", cmd)
}

func (s *Session) Complete(d prompt.Document) []prompt.Suggest {
	return s.suggest(d.TextBeforeCursor())
}

func (s *Session) suggest(text string) []prompt.Suggest {
	words := strings.Fields(text)
	word := ""
	if len(words) != 0 && !strings.HasSuffix(text, " ") {
		word = words[len(words)-1]
	}
	argument := len(words) >= 2 || (len(words) == 1 && word == "")
	switch {
	case !argument:
		return prompt.FilterHasPrefix(commandSuggests, word, true)

	case words[0] == "order":
		ps := s.g.Catalog.List()
		suggests := make([]prompt.Suggest, 0, len(ps))
		for _, p := range ps {
			suggests = append(suggests, prompt.Suggest{Text: p.Code, Description: p.Name})
		}
		return prompt.FilterHasPrefix(suggests, word, true)

	case words[0] == "coin":
		ns := s.g.Engine.Depot().Nominals()
		suggests := make([]prompt.Suggest, 0, len(ns))
		for _, n := range ns {
			suggests = append(suggests, prompt.Suggest{Text: fmt.Sprint(n)})
		}
		return prompt.FilterHasPrefix(suggests, word, true)
	}
	return nil
}

var commandSuggests = []prompt.Suggest{
	{Text: "menu"},
	{Text: "order"},
	{Text: "coin"},
	{Text: "abort"},
	{Text: "depot"},
	{Text: "reload"},
	{Text: "reset"},
	{Text: "orders"},
	{Text: "help"},
}

func (s *Session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
