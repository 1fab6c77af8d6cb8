// Package projection turns stored records into the populated views handed to clients.
package projection

import (
	"log/slog"

	"social-chat/domain/chat"
	"social-chat/repositories"

	"github.com/samber/lo"
)

// Populator resolves the identities referenced by messages and groups into public summaries.
// Lookups are batched and a failing lookup degrades to id-only summaries: population
// never prevents a message from being delivered.
type Populator struct {
	users      repositories.IUserRepository
	groups     repositories.IGroupRepository
	projection chat.Projection
	log        *slog.Logger
}

func NewPopulator(users repositories.IUserRepository, groups repositories.IGroupRepository,
	projection chat.Projection, log *slog.Logger) *Populator {
	return &Populator{users: users, groups: groups, projection: projection, log: log}
}

func (p *Populator) Message(message chat.Message) chat.MessageView {
	return p.Messages([]chat.Message{message})[0]
}

// Messages keeps the order of its input.
func (p *Populator) Messages(messages []chat.Message) []chat.MessageView {
	var ids []chat.UserID
	for _, m := range messages {
		ids = append(ids, m.SenderID)
		if !m.IsGroup {
			ids = append(ids, m.ReceiverID)
		}
	}
	summaries := p.summaries(ids)

	groups := make(map[chat.GroupID]chat.GroupSummary)
	for _, m := range messages {
		if !m.IsGroup {
			continue
		}
		if _, ok := groups[m.GroupID]; !ok {
			groups[m.GroupID] = p.groupSummary(m.GroupID)
		}
	}

	return lo.Map(messages, func(m chat.Message, _ int) chat.MessageView {
		view := chat.MessageView{
			ID:          m.ID.String(),
			Sender:      lo.ToPtr(summaries[m.SenderID]),
			Message:     m.Content,
			IsGroupChat: m.IsGroup,
			Timestamp:   chat.Millis(m.CreatedAt),
		}
		if m.IsGroup {
			view.Group = lo.ToPtr(groups[m.GroupID])
		} else {
			view.Receiver = lo.ToPtr(summaries[m.ReceiverID])
		}
		return view
	})
}

func (p *Populator) Group(group chat.Group) chat.GroupView {
	return p.Groups([]chat.Group{group})[0]
}

// Groups populates the members of every group with a single user lookup.
func (p *Populator) Groups(groups []chat.Group) []chat.GroupView {
	summaries := p.summaries(lo.FlatMap(groups, func(g chat.Group, _ int) []chat.UserID {
		return g.Members
	}))
	return lo.Map(groups, func(g chat.Group, _ int) chat.GroupView {
		return chat.GroupView{
			ID:   g.ID,
			Name: g.Name,
			Users: lo.Map(g.Members, func(id chat.UserID, _ int) chat.UserSummary {
				return summaries[id]
			}),
			CreatedAt: chat.Millis(g.CreatedAt),
		}
	})
}

// summaries always holds an entry for every requested id.
func (p *Populator) summaries(ids []chat.UserID) map[chat.UserID]chat.UserSummary {
	ids = lo.Uniq(ids)
	result := make(map[chat.UserID]chat.UserSummary, len(ids))
	for _, id := range ids {
		result[id] = chat.UnknownUser(id)
	}
	if len(ids) == 0 {
		return result
	}

	users, err := p.users.GetUsers(ids)
	if err != nil {
		p.log.Warn("Unable to populate users, falling back to identities", "count", len(ids), "error", err)
		return result
	}
	for id, user := range users {
		result[id] = user.Summary(p.projection)
	}
	return result
}

func (p *Populator) groupSummary(id chat.GroupID) chat.GroupSummary {
	group, err := p.groups.GetGroup(id)
	if err != nil {
		p.log.Debug("Unable to populate group", "group_id", id, "error", err)
		return chat.GroupSummary{ID: id}
	}
	return chat.ToGroupSummary(group)
}
