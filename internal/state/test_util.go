package state

import (
	"context"
	"os"
	"testing"

	"github.com/temoto/vender-kiosk/internal/tele"
	"github.com/temoto/vender-kiosk/log2"
)

// NewTestContext builds Global from inline config.
// Set env kiosk_test_log_stderr=1 to see log with panics.
func NewTestContext(t testing.TB, confString string) (context.Context, *Global) {
	fs := NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("kiosk_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug)
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log, tele.New())
	g.BuildVersion = "test"
	g.MustInit(ctx, MustReadConfig(log, fs, "test-inline"))
	return ctx, g
}
