package runtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"social-chat/contract"
	"social-chat/domain/chat"
	"social-chat/errors"
)

var _ contract.IRegistry = (*Registry)(nil)

// DefaultDeliveryTimeout bounds a single delivery to a single connection.
const DefaultDeliveryTimeout = 2 * time.Second

type Set map[contract.ConnectionID]struct{}

type binding struct {
	conn     contract.Connection
	userID   chat.UserID
	channels map[chat.ChannelID]struct{}
}

// Registry maps live connections to the identity bound to them and to the channels
// they listen on. It is an explicit object owned by the server wiring.
type Registry struct {
	mu              sync.RWMutex
	bindings        map[contract.ConnectionID]*binding
	channelMembers  map[chat.ChannelID]Set
	deliveryTimeout time.Duration
	log             *slog.Logger
}

func NewRegistry(deliveryTimeout time.Duration, log *slog.Logger) *Registry {
	if deliveryTimeout <= 0 {
		deliveryTimeout = DefaultDeliveryTimeout
	}
	return &Registry{
		bindings:        make(map[contract.ConnectionID]*binding),
		channelMembers:  make(map[chat.ChannelID]Set),
		deliveryTimeout: deliveryTimeout,
		log:             log,
	}
}

// Bind associates a connection with an identity and subscribes it to the identity's
// private channel. Binding again to the same identity is a no-op; binding to
// another identity is rejected.
func (r *Registry) Bind(conn contract.Connection, userID chat.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bindings[conn.ID()]; ok {
		if b.userID != userID {
			return errors.ErrAlreadyBound
		}
		return nil
	}
	r.bindings[conn.ID()] = &binding{
		conn:     conn,
		userID:   userID,
		channels: make(map[chat.ChannelID]struct{}),
	}
	r.subscribeLocked(conn.ID(), chat.UserChannel(userID))
	return nil
}

// Unbind removes the connection from every channel it joined.
// Unknown connections are ignored, so transports may call it unconditionally.
func (r *Registry) Unbind(connID contract.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[connID]
	if !ok {
		return
	}
	for channel := range b.channels {
		if members, ok := r.channelMembers[channel]; ok {
			delete(members, connID)
			// No empty sets are kept around
			if len(members) == 0 {
				delete(r.channelMembers, channel)
			}
		}
	}
	delete(r.bindings, connID)
}

func (r *Registry) Subscribe(connID contract.ConnectionID, channel chat.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bindings[connID]; !ok {
		return errors.ErrNotBound
	}
	r.subscribeLocked(connID, channel)
	return nil
}

// SubscribeUser subscribes every open connection of the user and returns how many there were.
// An offline user is not an error: they pick up their groups on the next connect.
func (r *Registry) SubscribeUser(userID chat.UserID, channel chat.ChannelID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.channelMembers[chat.UserChannel(userID)]
	for connID := range members {
		r.subscribeLocked(connID, channel)
	}
	return len(members)
}

func (r *Registry) subscribeLocked(connID contract.ConnectionID, channel chat.ChannelID) {
	if _, ok := r.channelMembers[channel]; !ok {
		r.channelMembers[channel] = make(Set)
	}
	r.channelMembers[channel][connID] = struct{}{}
	r.bindings[connID].channels[channel] = struct{}{}
}

// Publish delivers the notification to every connection subscribed to the channel,
// in parallel, each delivery bounded by the delivery timeout. It returns the number
// of successful deliveries. The targets are snapshotted under the read lock so that
// slow connections never hold the registry.
func (r *Registry) Publish(ctx context.Context, channel chat.ChannelID, n chat.Notification) int {
	targets := r.snapshot(channel)
	if len(targets) == 0 {
		return 0
	}

	var delivered atomic.Int64
	var wg sync.WaitGroup
	for _, conn := range targets {
		wg.Add(1)
		go func(conn contract.Connection) {
			defer wg.Done()
			deliveryCtx, cancel := context.WithTimeout(ctx, r.deliveryTimeout)
			defer cancel()
			if err := conn.Consume(deliveryCtx, n); err != nil {
				r.log.Debug("Delivery failed", "channel", channel, "connection", conn.ID(),
					"event", n.Event, "error", err)
				return
			}
			delivered.Add(1)
		}(conn)
	}
	wg.Wait()
	return int(delivered.Load())
}

func (r *Registry) snapshot(channel chat.ChannelID) []contract.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.channelMembers[channel]
	targets := make([]contract.Connection, 0, len(members))
	for connID := range members {
		if b, ok := r.bindings[connID]; ok {
			targets = append(targets, b.conn)
		}
	}
	return targets
}

func (r *Registry) IsOnline(userID chat.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channelMembers[chat.UserChannel(userID)]) > 0
}

// Connections returns the number of bound connections.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// Subscribers returns the number of connections listening on a channel.
func (r *Registry) Subscribers(channel chat.ChannelID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channelMembers[channel])
}
