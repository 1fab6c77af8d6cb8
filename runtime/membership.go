package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"social-chat/contract"
	"social-chat/domain/chat"
	"social-chat/errors"
	"social-chat/projection"
	"social-chat/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Membership keeps the stored group membership and the registry subscriptions in step.
type Membership struct {
	registry  contract.IRegistry
	groups    repositories.IGroupRepository
	populator *projection.Populator
	validate  *validator.Validate
	locks     *KeyedMutex
	now       func() time.Time
	log       *slog.Logger
}

func NewMembership(registry contract.IRegistry, groups repositories.IGroupRepository,
	populator *projection.Populator, log *slog.Logger) *Membership {
	return &Membership{
		registry:  registry,
		groups:    groups,
		populator: populator,
		validate:  chat.NewValidator(),
		locks:     NewKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// CreateGroup always creates a new group, even when another one has the same name.
// The creator's connection and the open connections of every named member join the
// group channel before groupCreated is published on it.
// The creator is not added as a member unless named.
func (m *Membership) CreateGroup(ctx context.Context, creator chat.UserID, connID contract.ConnectionID,
	cmd chat.CreateGroupCommand) (chat.GroupView, error) {
	if err := m.validate.Struct(cmd); err != nil {
		return chat.GroupView{}, fmt.Errorf("%w: %w", errors.ErrInvalidAction, err)
	}

	group := chat.NewGroup(chat.GroupID(uuid.NewString()), strings.TrimSpace(cmd.GroupName), trimIDs(cmd.UserIDs), m.now())
	if err := m.groups.CreateGroup(group); err != nil {
		return chat.GroupView{}, err
	}

	channel := chat.GroupChannel(group.ID)
	if connID != "" {
		if err := m.registry.Subscribe(connID, channel); err != nil {
			m.log.Debug("Creator connection not subscribed", "connection", connID, "error", err)
		}
	}
	for _, member := range group.Members {
		m.registry.SubscribeUser(member, channel)
	}

	view := m.populator.Group(group)
	delivered := m.registry.Publish(ctx, channel, chat.Notification{Event: chat.EventGroupCreated, Payload: view})
	m.log.Info("Group created", "group_id", group.ID, "creator", creator, "members", len(group.Members),
		"deliveries", delivered)
	return view, nil
}

// AddUsers adds members to a group, materializing it when unknown.
// Calls are serialized per group and the stored union is atomic, so concurrent
// additions never lose a member. Every member of the resulting group receives
// exactly one usersAddedToGroup on their private channel.
func (m *Membership) AddUsers(ctx context.Context, cmd chat.AddUsersToGroupCommand) (chat.MembersAddedView, error) {
	if err := m.validate.Struct(cmd); err != nil {
		return chat.MembersAddedView{}, fmt.Errorf("%w: %w", errors.ErrInvalidAction, err)
	}
	groupID := chat.GroupID(strings.TrimSpace(string(cmd.GroupID)))
	userIDs := trimIDs(cmd.UserIDs)

	unlock := m.locks.Lock(string(groupID))
	defer unlock()

	change, err := m.groups.AddMembers(groupID, userIDs, m.now())
	if err != nil {
		return chat.MembersAddedView{}, err
	}

	channel := chat.GroupChannel(groupID)
	for _, member := range userIDs {
		m.registry.SubscribeUser(member, channel)
	}

	view := chat.MembersAddedView{
		GroupID: groupID,
		UserIDs: change.Group.Members,
		Added:   lo.Ternary(change.Added == nil, []chat.UserID{}, change.Added),
		Group:   m.populator.Group(change.Group),
	}
	n := chat.Notification{Event: chat.EventUsersAddedToGroup, Payload: view}
	channels := lo.Map(change.Group.Members, func(id chat.UserID, _ int) chat.ChannelID {
		return chat.UserChannel(id)
	})
	delivered := fanout(ctx, m.registry, channels, n)
	m.log.Info("Users added to group", "group_id", groupID, "added", len(change.Added),
		"created", change.Created, "deliveries", delivered)
	return view, nil
}

// ChannelsOf returns the group channels a user must listen on, derived from storage.
// It is used on connect so that membership survives reconnections.
func (m *Membership) ChannelsOf(userID chat.UserID) ([]chat.ChannelID, error) {
	groups, err := m.groups.ListGroupsByMember(userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(groups, func(g chat.Group, _ int) chat.ChannelID {
		return chat.GroupChannel(g.ID)
	}), nil
}

func trimIDs(ids []chat.UserID) []chat.UserID {
	return lo.Uniq(lo.FilterMap(ids, func(id chat.UserID, _ int) (chat.UserID, bool) {
		trimmed := chat.UserID(strings.TrimSpace(string(id)))
		return trimmed, trimmed != ""
	}))
}
