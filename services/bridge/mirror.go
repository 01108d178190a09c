package bridge

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"roland-ctrl/bus"
	"roland-ctrl/types"
)

// Publisher sends one retained payload to an external broker.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Mirror forwards relay events and bridge state from the bus to a broker as
// <prefix>/relay/<channel> and <prefix>/bridge/state. It never touches State.
type Mirror struct {
	pub    Publisher
	prefix string
	conn   *bus.Connection
}

func NewMirror(pub Publisher, prefix string, conn *bus.Connection) *Mirror {
	return &Mirror{pub: pub, prefix: strings.Trim(prefix, "/"), conn: conn}
}

// Run forwards until ctx is done. Retained bus values are sent first.
func (m *Mirror) Run(ctx context.Context) {
	events := m.conn.Subscribe(bus.T("relay", bus.Single))
	state := m.conn.Subscribe(StateTopic)
	defer m.conn.Disconnect()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events.Channel():
			if !ok {
				return
			}
			m.forward(msg)
		case msg, ok := <-state.Channel():
			if !ok {
				return
			}
			m.forward(msg)
		}
	}
}

func (m *Mirror) forward(msg *bus.Message) {
	payload, ok := encodePayload(msg.Payload)
	if !ok {
		glog.Warningf("mirror: %s: unsupported payload %T", msg.Topic, msg.Payload)
		return
	}
	topic := msg.Topic.String()
	if m.prefix != "" {
		topic = m.prefix + "/" + topic
	}
	if err := m.pub.Publish(topic, payload); err != nil {
		glog.Warningf("mirror: publish %s: %v", topic, err)
		return
	}
	glog.V(2).Infof("mirror: PUB %q", topic)
}

// encodePayload renders events as their decimal value and link state as JSON.
func encodePayload(p any) ([]byte, bool) {
	switch v := p.(type) {
	case types.Event:
		return strconv.AppendUint(nil, uint64(v.Value), 10), true
	case types.LinkState:
		b, err := json.Marshal(v)
		return b, err == nil
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// paho-backed Publisher
// -----------------------------------------------------------------------------

const mqttTimeout = 5 * time.Second

// MQTTPublisher publishes retained QoS 0 messages through paho.
type MQTTPublisher struct {
	client paho.Client
}

// DialMQTT connects to the broker at serverURL (mqtt://[user:pass@]host:port[?client-id=x]).
func DialMQTT(serverURL string) (*MQTTPublisher, error) {
	opts, err := ClientOptionsFromURL(serverURL)
	if err != nil {
		return nil, err
	}
	opts.SetOnConnectHandler(func(paho.Client) { glog.Info("mqtt: connected") })
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("mqtt: connection lost: %v", err)
	})
	c := paho.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(mqttTimeout) {
		return nil, context.DeadlineExceeded
	}
	if err := tok.Error(); err != nil {
		return nil, err
	}
	return &MQTTPublisher{client: c}, nil
}

func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	tok := p.client.Publish(topic, 0, true, payload)
	if !tok.WaitTimeout(mqttTimeout) {
		return context.DeadlineExceeded
	}
	return tok.Error()
}

func (p *MQTTPublisher) Close() { p.client.Disconnect(250) }

// ClientOptionsFromURL builds paho options from a broker URL. The mqtt://
// scheme (or none) maps to tcp://.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	clientID := u.Query().Get("client-id")
	if clientID == "" {
		clientID = "relay-bridge"
	}
	opts.SetClientID(clientID)
	return opts, nil
}
