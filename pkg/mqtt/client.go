package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/autopeer-io/missionlens/pkg/log"
)

var errNotStarted = errors.New("client not started")

type pahoClient struct {
	cfg *ClientConfig
	cm  *autopaho.ConnectionManager
	log log.Logger

	// ctx is handed to message handlers. It ends when the connection
	// manager started by Start shuts down.
	ctx context.Context

	connected atomic.Bool

	// mu guards subscriptions, kept in registration order. Dispatch and
	// re-subscription follow that order.
	mu            sync.RWMutex
	subscriptions []subscriptionEntry
}

type subscriptionEntry struct {
	topic   string
	qos     int
	handler MessageHandler
}

// NewClient validates cfg and returns an idle client. Nothing touches the
// network until Start.
func NewClient(cfg *ClientConfig) (Client, error) {
	if cfg == nil {
		return nil, errors.New("mqtt config is required")
	}

	setDefaultConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mqtt config: %w", err)
	}

	return &pahoClient{
		cfg: cfg,
		log: log.WithName("mqtt").WithValues("clientID", cfg.ClientID),
	}, nil
}

func (c *pahoClient) logger() log.Logger {
	if c.log == nil {
		return log.Std()
	}
	return c.log
}

func (c *pahoClient) handlerContext() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *pahoClient) Start(ctx context.Context) error {
	brokerURL, _ := url.Parse(c.cfg.BrokerURL) // validated in NewClient

	cfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{brokerURL},
		KeepAlive:                     c.cfg.KeepAlive,
		ConnectTimeout:                c.cfg.ConnectTimeout,
		ReconnectBackoff:              autopaho.NewConstantBackoff(c.cfg.ReconnectBackoff),
		CleanStartOnInitialConnection: c.cfg.CleanStart,
		SessionExpiryInterval:         c.cfg.SessionExpiry,
		ConnectUsername:               c.cfg.Username,
		ConnectPassword:               []byte(c.cfg.Password),
		TlsCfg:                        &tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify},
		WillMessage:                   c.willMessage(),
		OnConnectionUp:                c.onConnectionUp,
		OnConnectError:                c.onConnectError,
		ClientConfig: paho.ClientConfig{
			ClientID:           c.cfg.ClientID,
			OnPublishReceived:  []func(paho.PublishReceived) (bool, error){c.router},
			OnClientError:      c.onClientError,
			OnServerDisconnect: c.onServerDisconnect,
		},
	}
	if c.cfg.Debug {
		cfg.Debug = pahoLogger{l: c.logger().WithName("autopaho")}
		cfg.PahoDebug = pahoLogger{l: c.logger().WithName("paho")}
	}

	c.logger().Info("Connecting to broker", "broker", c.cfg.BrokerURL)

	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.cfg.BrokerURL, err)
	}
	c.cm = cm
	c.ctx = ctx
	return nil
}

func (c *pahoClient) Disconnect(ctx context.Context) {
	if c.cm == nil {
		return
	}
	if err := c.cm.Disconnect(ctx); err != nil {
		c.logger().Debug("Disconnect did not complete cleanly", "error", err.Error())
	}
	c.setConnected(false)
	c.logger().Info("Disconnected from broker")
}

func (c *pahoClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if c.cm == nil {
		return errNotStarted
	}

	if _, err := c.cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     byte(qos),
		Retain:  retain,
		Payload: payload,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (c *pahoClient) Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error {
	if c.cm == nil {
		return errNotStarted
	}

	entry := subscriptionEntry{topic: topic, qos: qos, handler: handler}
	c.mu.Lock()
	c.subscriptions = append(removeEntry(c.subscriptions, topic), entry)
	c.mu.Unlock()

	// While offline this fails; onConnectionUp subscribes again.
	if _, err := c.cm.Subscribe(ctx, subscribePacket(entry)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	c.logger().Info("Subscribed", "topic", topic, "qos", qos)
	return nil
}

func (c *pahoClient) Unsubscribe(ctx context.Context, topic string) error {
	if c.cm == nil {
		return errNotStarted
	}

	c.mu.Lock()
	c.subscriptions = removeEntry(c.subscriptions, topic)
	c.mu.Unlock()

	if _, err := c.cm.Unsubscribe(ctx, &paho.Unsubscribe{Topics: []string{topic}}); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", topic, err)
	}
	return nil
}

func (c *pahoClient) AwaitConnection(ctx context.Context) error {
	if c.cm == nil {
		return errNotStarted
	}
	return c.cm.AwaitConnection(ctx)
}

func (c *pahoClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *pahoClient) entries() []subscriptionEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]subscriptionEntry(nil), c.subscriptions...)
}

// onConnectionUp restores every subscription in one SUBSCRIBE packet.
func (c *pahoClient) onConnectionUp(cm *autopaho.ConnectionManager, _ *paho.Connack) {
	c.setConnected(true)

	entries := c.entries()
	c.logger().Info("Connected to broker", "subscriptions", len(entries))
	if len(entries) == 0 {
		return
	}
	if _, err := cm.Subscribe(c.handlerContext(), subscribePacket(entries...)); err != nil {
		c.logger().Error(err, "Failed to restore subscriptions", "count", len(entries))
	}
}

func (c *pahoClient) onConnectError(err error) {
	c.setConnected(false)
	c.logger().Error(err, "Broker connection failed, retrying", "backoff", c.cfg.ReconnectBackoff)
}

func (c *pahoClient) onClientError(err error) {
	c.setConnected(false)
	c.logger().Error(err, "MQTT client error")
}

func (c *pahoClient) onServerDisconnect(d *paho.Disconnect) {
	c.setConnected(false)
	var reason string
	if d.Properties != nil {
		reason = d.Properties.ReasonString
	}
	c.logger().Warn("Broker closed the connection", "code", d.ReasonCode, "reason", reason)
}

func (c *pahoClient) setConnected(v bool) {
	if c.connected.Swap(v) != v && c.cfg.OnConnectionChange != nil {
		c.cfg.OnConnectionChange(v)
	}
}

// router hands a publish to every matching handler, inline, so handlers see
// messages in arrival order. Every publish is acknowledged.
func (c *pahoClient) router(p paho.PublishReceived) (bool, error) {
	matched := false
	for _, entry := range c.entries() {
		if !topicsMatch(topicFilter(entry.topic), p.Packet.Topic) {
			continue
		}
		entry.handler(c.handlerContext(), p.Packet.Topic, p.Packet.Payload)
		matched = true
	}
	if !matched {
		c.logger().Debug("No handler for topic", "topic", p.Packet.Topic)
	}
	return true, nil
}

func (c *pahoClient) willMessage() *paho.WillMessage {
	if c.cfg.WillTopic == "" {
		return nil
	}
	return &paho.WillMessage{
		Topic:   c.cfg.WillTopic,
		Payload: c.cfg.WillPayload,
		QoS:     c.cfg.WillQoS,
		Retain:  c.cfg.WillRetain,
	}
}

func subscribePacket(entries ...subscriptionEntry) *paho.Subscribe {
	s := &paho.Subscribe{Subscriptions: make([]paho.SubscribeOptions, 0, len(entries))}
	for _, e := range entries {
		s.Subscriptions = append(s.Subscriptions, paho.SubscribeOptions{Topic: e.topic, QoS: byte(e.qos)})
	}
	return s
}

func removeEntry(entries []subscriptionEntry, topic string) []subscriptionEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.topic != topic {
			out = append(out, e)
		}
	}
	return out
}

// topicsMatch reports whether topic matches filter, honoring + and #.
func topicsMatch(filter, topic string) bool {
	if filter == topic {
		return true
	}
	if !strings.ContainsAny(filter, "+#") {
		return false
	}

	levels := strings.Split(topic, "/")
	for i, f := range strings.Split(filter, "/") {
		switch {
		case f == "#":
			return true
		case i >= len(levels):
			return false
		case f != "+" && f != levels[i]:
			return false
		}
	}
	return strings.Count(filter, "/") == len(levels)-1
}

// topicFilter strips a "$share/<group>/" prefix from a shared subscription.
func topicFilter(filter string) string {
	if rest, ok := strings.CutPrefix(filter, "$share/"); ok {
		if _, f, ok := strings.Cut(rest, "/"); ok {
			return f
		}
	}
	return filter
}

// pahoLogger routes paho trace output to the debug log.
type pahoLogger struct {
	l log.Logger
}

func (p pahoLogger) Println(v ...any) {
	p.l.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (p pahoLogger) Printf(format string, v ...any) {
	p.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
