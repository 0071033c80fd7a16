package mqtt

import (
	"context"
)

// MessageHandler is called for every message matching a subscription.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Publisher sends messages to the broker.
type Publisher interface {
	// Publish sends payload to topic. A retained message with an empty
	// payload clears the topic's retained message on the broker.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error
}

// Subscriber routes incoming messages to handlers.
type Subscriber interface {
	// Subscribe registers handler for a topic filter.
	// Handlers run on the client's receive goroutine, in arrival order,
	// so a blocking handler holds back every later message.
	// Subscriptions survive reconnects.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// Unsubscribe drops the handler and tells the broker.
	Unsubscribe(ctx context.Context, topic string) error
}

// Client is a managed broker connection used by missionlens for both the
// ingress feed and the egress graph topics.
type Client interface {
	Publisher
	Subscriber

	// Start connects in the background and returns immediately.
	// Use AwaitConnection to wait for the first connection.
	Start(ctx context.Context) error

	// Disconnect closes the connection.
	Disconnect(ctx context.Context)

	// AwaitConnection blocks until connected or ctx is done.
	AwaitConnection(ctx context.Context) error

	IsConnected() bool
}

// ClearRetained removes the retained message held for topic.
func ClearRetained(ctx context.Context, p Publisher, topic string, qos int) error {
	return p.Publish(ctx, topic, qos, true, nil)
}
