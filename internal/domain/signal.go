package domain

import "context"

// Signal bus channel names. Subscribers (the websocket hub, tooling) receive
// JSON payloads on these channels.
const (
	ChannelSnapshot = "snapshot"
	ChannelPurchase = "purchase"
	ChannelDraw     = "draw"
)

// StreamDraws is the durable stream of settled draw records, one entry per
// completed day.
const StreamDraws = "lottery:draws"

// SignalBus is a lightweight pub/sub fabric between the synchronizer and
// push consumers. Delivery is best effort; dropped messages are superseded by
// the next snapshot anyway.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// StreamMessage is one entry read back from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}
