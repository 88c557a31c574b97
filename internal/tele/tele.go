// Package tele delivers settled order records to the operator backend.
// Tele contract:
// - Init() fails only with invalid config, network issues ignored
// - records are queued by orderlog before settlement returns,
//   network may be slow or absent, records are delivered in background
// - records are delivered at least once, in order of queue,
//   failed delivery moves record to the end of queue
// - Close() waits for delivery worker, order log must be closed before
package tele

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/internal/orderlog"
	"github.com/temoto/vender-kiosk/log2"
)

const (
	defaultRetryMin = 1 * time.Second
	defaultRetryMax = 5 * time.Minute
)

type Config struct {
	Enabled           bool   `hcl:"enable"`
	VmId              int    `hcl:"vm_id"`
	MqttBroker        string `hcl:"mqtt_broker"`
	MqttPassword      string `hcl:"mqtt_password"`
	MqttLogDebug      bool   `hcl:"mqtt_log_debug"`
	KeepaliveSec      int    `hcl:"keepalive_sec"`
	PingTimeoutSec    int    `hcl:"ping_timeout_sec"`
	NetworkTimeoutSec int    `hcl:"network_timeout_sec"`
	RetryMinSec       int    `hcl:"retry_min_sec"`
	RetryMaxSec       int    `hcl:"retry_max_sec"`
	StorePath         string `hcl:"store_path"`
	LogDebug          bool   `hcl:"log_debug"`
}

type Stat struct {
	Sent   uint32
	Failed uint32
}

type Tele struct {
	alive     *alive.Alive
	config    Config
	log       *log2.Log
	transport Transporter
	retry     helpers.Backoff
	sent      uint32 // atomic
	failed    uint32 // atomic
}

func New() *Tele { return &Tele{} }

// NewWithTransporter is for tests.
func NewWithTransporter(trans Transporter) *Tele {
	return &Tele{transport: trans}
}

func (self *Tele) Init(ctx context.Context, log *log2.Log, config Config, orders *orderlog.Log) error {
	self.config = config
	self.log = log
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	self.alive = alive.NewAlive()
	if !self.config.Enabled {
		self.log.Debugf("tele disabled")
		return nil
	}
	if orders == nil || !orders.Persistent() {
		return errors.NotValidf("tele enabled without order_log path")
	}

	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	if err := self.transport.Init(ctx, log, config); err != nil {
		return errors.Annotate(err, "tele transport")
	}
	self.retry = helpers.Backoff{
		Min: helpers.SecondsOr(config.RetryMinSec, defaultRetryMin),
		Max: helpers.SecondsOr(config.RetryMaxSec, defaultRetryMax),
		K:   2,
	}

	self.alive.Add(1)
	go func() {
		defer self.alive.Done()
		orders.Drain(self.alive.StopChan(), self.send, &self.retry)
	}()
	return nil
}

func (self *Tele) Close() {
	if self.alive == nil {
		return
	}
	self.alive.Stop()
	self.alive.Wait()
	if self.transport != nil {
		self.transport.Close()
	}
}

func (self *Tele) Enabled() bool { return self.config.Enabled }

func (self *Tele) Stat() Stat {
	return Stat{
		Sent:   atomic.LoadUint32(&self.sent),
		Failed: atomic.LoadUint32(&self.failed),
	}
}

func (self *Tele) send(payload []byte) bool {
	if !self.transport.SendOrder(payload) {
		atomic.AddUint32(&self.failed, 1)
		self.log.Debugf("tele order delivery failed, will retry")
		return false
	}
	atomic.AddUint32(&self.sent, 1)
	return true
}
