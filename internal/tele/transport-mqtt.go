package tele

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/helpers"
	"github.com/temoto/vender-kiosk/log2"
)

const (
	defaultKeepalive      = 60 * time.Second
	defaultPingTimeout    = 30 * time.Second
	DefaultNetworkTimeout = 30 * time.Second
)

type transportMqtt struct {
	log            *log2.Log
	m              mqtt.Client
	mopt           *mqtt.ClientOptions
	networkTimeout time.Duration

	topicConnect string
	topicOrder   string
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, config Config) error {
	self.log = log
	mqttLog := log.Clone(log2.LInfo)
	if config.MqttLogDebug {
		mqttLog.SetLevel(log2.LDebug)
		mqtt.DEBUG = mqttLog
	}
	mqtt.ERROR = mqttLog
	mqtt.CRITICAL = mqttLog
	mqtt.WARN = mqttLog

	if _, err := url.ParseRequestURI(config.MqttBroker); err != nil {
		return errors.Annotatef(err, "tele mqtt_broker=%s", config.MqttBroker)
	}

	mqttClientId := fmt.Sprintf("vm%d", config.VmId)
	credFun := func() (string, string) {
		return mqttClientId, config.MqttPassword
	}
	self.topicConnect = TopicConnect(config.VmId)
	self.topicOrder = TopicOrder(config.VmId)
	self.networkTimeout = helpers.SecondsOr(config.NetworkTimeoutSec, DefaultNetworkTimeout)
	if self.networkTimeout < 1*time.Second {
		self.networkTimeout = 1 * time.Second
	}
	keepAlive := helpers.SecondsOr(config.KeepaliveSec, defaultKeepalive)
	pingTimeout := helpers.SecondsOr(config.PingTimeoutSec, defaultPingTimeout)

	self.mopt = mqtt.NewClientOptions().
		AddBroker(config.MqttBroker).
		SetBinaryWill(self.topicConnect, []byte{0x00}, 1, true).
		SetCleanSession(false).
		SetClientID(mqttClientId).
		SetCredentialsProvider(credFun).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetConnectTimeout(self.networkTimeout).
		SetWriteTimeout(self.networkTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	if config.StorePath != "" {
		self.mopt.SetStore(mqtt.NewFileStore(config.StorePath))
	}
	self.m = mqtt.NewClient(self.mopt)
	// network may be absent at start, SendOrder connects again
	self.connect()
	return nil
}

func (self *transportMqtt) Close() {
	if self.m == nil {
		return
	}
	if self.m.IsConnected() {
		self.m.Publish(self.topicConnect, 1, true, []byte{0x00}).WaitTimeout(self.networkTimeout)
	}
	self.m.Disconnect(uint(self.networkTimeout / time.Millisecond))
	self.log.Infof("mqtt disconnect")
}

func (self *transportMqtt) SendOrder(payload []byte) bool {
	if !self.m.IsConnected() && !self.connect() {
		return false
	}
	token := self.m.Publish(self.topicOrder, 1, false, payload)
	if !token.WaitTimeout(self.networkTimeout) {
		self.log.Errorf("mqtt publish topic=%s timeout=%v", self.topicOrder, self.networkTimeout)
		return false
	}
	if err := token.Error(); err != nil {
		self.log.Errorf("mqtt publish topic=%s err=%v", self.topicOrder, err)
		return false
	}
	return true
}

func (self *transportMqtt) connect() bool {
	token := self.m.Connect()
	if !token.WaitTimeout(self.networkTimeout) {
		self.log.Errorf("mqtt connect timeout=%v", self.networkTimeout)
		return false
	}
	if err := token.Error(); err != nil {
		self.log.Errorf("mqtt connect err=%v", err)
		return false
	}
	return true
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("mqtt disconnect err=%v", err)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("mqtt connect")
	c.Publish(self.topicConnect, 1, true, []byte{0x01})
}
