// Package runtime routes real-time actions: it persists, populates, and fans out
// messages and membership changes to the connections bound in the registry.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"social-chat/contract"
	"social-chat/domain/chat"
	"social-chat/errors"
	"social-chat/moderation"
	"social-chat/observability"
	"social-chat/projection"
	"social-chat/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var _ contract.IActionHandler = (*Engine)(nil)

const (
	DefaultQueueSize  = 1024
	errorReplyTimeout = time.Second
)

type EngineConfig struct {
	QueueSize   int
	ReplyErrors bool
}

// Engine is the dispatch engine of real-time actions.
// Every action is persisted before it is published: a notification never
// announces a message that is not stored.
type Engine struct {
	registry    contract.IRegistry
	messages    repositories.IMessageRepository
	groups      repositories.IGroupRepository
	index       repositories.IMessageIndex
	populator   *projection.Populator
	moderator   *moderation.Moderator
	membership  *Membership
	validate    *validator.Validate
	actions     chan contract.Job
	replyErrors bool
	monitoring  *observability.MonitoringManager
	log         *slog.Logger
}

// NewEngine wires the dispatch engine. index and moderator are optional.
func NewEngine(
	registry contract.IRegistry,
	messages repositories.IMessageRepository,
	groups repositories.IGroupRepository,
	index repositories.IMessageIndex,
	populator *projection.Populator,
	moderator *moderation.Moderator,
	membership *Membership,
	config EngineConfig,
	log *slog.Logger) *Engine {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	return &Engine{
		registry:    registry,
		messages:    messages,
		groups:      groups,
		index:       index,
		populator:   populator,
		moderator:   moderator,
		membership:  membership,
		validate:    chat.NewValidator(),
		actions:     make(chan contract.Job, config.QueueSize),
		replyErrors: config.ReplyErrors,
		log:         log,
	}
}

// WithMonitoring reports the engine counters and queue level to the monitoring manager.
func (e *Engine) WithMonitoring(monitoring *observability.MonitoringManager) *Engine {
	e.monitoring = monitoring
	monitoring.WatchQueue(func() int { return len(e.actions) }, cap(e.actions))
	return e
}

// Submit enqueues a job for the action workers without blocking.
func (e *Engine) Submit(job contract.Job) error {
	select {
	case e.actions <- job:
		return nil
	default:
		e.monitoring.IncrActionsRejected()
		return errors.ErrBackpressure
	}
}

// Actions is the queue consumed by the action workers.
func (e *Engine) Actions() <-chan contract.Job {
	return e.actions
}

// Handle runs one action inside its own failure boundary.
// A failing or panicking action is logged and, when enabled, answered with an
// error event on the originating connection. It never affects other actions.
func (e *Engine) Handle(ctx context.Context, job contract.Job) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("Action panicked", "user_id", job.UserID, "panic", r)
				err = errors.ErrActionPanic
			}
		}()
		return e.dispatch(ctx, job)
	}()
	if err == nil {
		return
	}

	event := chat.Event("")
	if job.Action != nil {
		event = job.Action.Event()
	}
	e.monitoring.IncrActionsFailed()
	e.log.Warn("Action failed", "user_id", job.UserID, "action", event, "error", err)
	e.replyError(ctx, job, event, err)
}

func (e *Engine) dispatch(ctx context.Context, job contract.Job) error {
	connID := contract.ConnectionID("")
	if job.Conn != nil {
		connID = job.Conn.ID()
	}
	switch action := job.Action.(type) {
	case chat.IndividualMessageCommand:
		_, err := e.SendIndividual(ctx, job.UserID, action)
		return err
	case chat.GroupMessageCommand:
		_, err := e.SendGroup(ctx, job.UserID, action)
		return err
	case chat.CreateGroupCommand:
		_, err := e.membership.CreateGroup(ctx, job.UserID, connID, action)
		return err
	case chat.AddUsersToGroupCommand:
		_, err := e.membership.AddUsers(ctx, action)
		return err
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownAction, job.Action)
	}
}

func (e *Engine) replyError(ctx context.Context, job contract.Job, event chat.Event, err error) {
	if !e.replyErrors || job.Conn == nil {
		return
	}
	replyCtx, cancel := context.WithTimeout(ctx, errorReplyTimeout)
	defer cancel()
	reply := chat.Notification{
		Event: chat.EventError,
		Payload: chat.ActionError{
			Action: event,
			Kind:   string(errors.KindOf(err)),
			Reason: err.Error(),
		},
	}
	if consumeErr := job.Conn.Consume(replyCtx, reply); consumeErr != nil {
		e.log.Debug("Unable to reply with error", "connection", job.Conn.ID(), "error", consumeErr)
	}
}

// SendIndividual stores a message between two users and delivers it to both of their
// private channels. A message to oneself is delivered once.
func (e *Engine) SendIndividual(ctx context.Context, connUser chat.UserID, cmd chat.IndividualMessageCommand) (chat.MessageView, error) {
	if err := e.validateAction(cmd); err != nil {
		return chat.MessageView{}, err
	}
	sender, err := resolveSender(connUser, cmd.SenderID)
	if err != nil {
		return chat.MessageView{}, err
	}

	message := chat.NewIndividualMessage(sender, chat.UserID(strings.TrimSpace(string(cmd.ReceiverID))), e.moderate(cmd.Message))
	view, err := e.persist(message)
	if err != nil {
		return chat.MessageView{}, err
	}

	n := chat.Notification{Event: chat.EventIndividual, Payload: view}
	channels := lo.Map(message.Participants(), func(id chat.UserID, _ int) chat.ChannelID {
		return chat.UserChannel(id)
	})
	delivered := e.fanout(ctx, channels, n)
	e.log.Debug("Individual message delivered", "sender", sender, "receiver", message.ReceiverID, "deliveries", delivered)
	return view, nil
}

// SendGroup stores a message in an existing group and delivers it to the private
// channel of every current member. An unknown group rejects the message before
// anything is stored.
func (e *Engine) SendGroup(ctx context.Context, connUser chat.UserID, cmd chat.GroupMessageCommand) (chat.MessageView, error) {
	if err := e.validateAction(cmd); err != nil {
		return chat.MessageView{}, err
	}
	sender, err := resolveSender(connUser, cmd.SenderID)
	if err != nil {
		return chat.MessageView{}, err
	}
	group, err := e.groups.GetGroup(chat.GroupID(strings.TrimSpace(string(cmd.GroupID))))
	if err != nil {
		return chat.MessageView{}, err
	}

	view, err := e.persist(chat.NewGroupMessage(sender, group.ID, e.moderate(cmd.Message)))
	if err != nil {
		return chat.MessageView{}, err
	}

	n := chat.Notification{Event: chat.EventGroup, Payload: view}
	channels := lo.Map(group.Members, func(id chat.UserID, _ int) chat.ChannelID {
		return chat.UserChannel(id)
	})
	delivered := e.fanout(ctx, channels, n)
	e.log.Debug("Group message delivered", "sender", sender, "group_id", group.ID,
		"members", len(group.Members), "deliveries", delivered)
	return view, nil
}

// persist stores the message, indexes it, and returns its populated view.
// Indexing is best effort: the store is the source of truth.
func (e *Engine) persist(message chat.Message) (chat.MessageView, error) {
	stored, err := e.messages.StoreMessage(message)
	if err != nil {
		return chat.MessageView{}, err
	}
	e.monitoring.IncrMessagesStored()
	if e.index != nil {
		if err := e.index.Index(stored); err != nil {
			e.log.Warn("Unable to index message", "message_id", stored.ID, "error", err)
		}
	}
	return e.populator.Message(stored), nil
}

func (e *Engine) moderate(content string) string {
	if e.moderator == nil {
		return content
	}
	return e.moderator.Inspect(content).Content
}

// fanout publishes on every channel concurrently and returns the total number of deliveries.
func (e *Engine) fanout(ctx context.Context, channels []chat.ChannelID, n chat.Notification) int {
	delivered := fanout(ctx, e.registry, channels, n)
	e.monitoring.AddDeliveries(delivered)
	return delivered
}

func (e *Engine) validateAction(action any) error {
	if err := e.validate.Struct(action); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidAction, err)
	}
	return nil
}

// resolveSender fills an empty sender from the connection identity and rejects any other value.
func resolveSender(connUser, claimed chat.UserID) (chat.UserID, error) {
	claimed = chat.UserID(strings.TrimSpace(string(claimed)))
	if connUser == "" {
		return "", errors.ErrNotBound
	}
	if claimed != "" && claimed != connUser {
		return "", fmt.Errorf("%w: %s", errors.ErrSenderMismatch, claimed)
	}
	return connUser, nil
}

func fanout(ctx context.Context, registry contract.IRegistry, channels []chat.ChannelID, n chat.Notification) int {
	var delivered atomic.Int64
	var wg sync.WaitGroup
	for _, channel := range lo.Uniq(channels) {
		wg.Add(1)
		go func(channel chat.ChannelID) {
			defer wg.Done()
			delivered.Add(int64(registry.Publish(ctx, channel, n)))
		}(channel)
	}
	wg.Wait()
	return int(delivered.Load())
}
