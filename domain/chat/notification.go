package chat

import (
	"time"
)

// Event names both inbound actions and outbound notifications on the wire.
type Event string

const (
	EventIndividual        Event = "individual"
	EventGroup             Event = "group"
	EventCreateGroup       Event = "createGroup"
	EventAddUsersToGroup   Event = "addUsersToGroup"
	EventGroupCreated      Event = "groupCreated"
	EventUsersAddedToGroup Event = "usersAddedToGroup"
	EventError             Event = "error"
)

// Notification is what the registry hands to every subscribed connection.
type Notification struct {
	Event   Event `json:"event"`
	Payload any   `json:"data"`
}

// GroupSummary is the short form of a group embedded in message views.
type GroupSummary struct {
	ID        GroupID `json:"_id"`
	Name      string  `json:"name"`
	CreatedAt int64   `json:"createdAt"`
}

// MessageView is a populated message as delivered to clients and REST callers.
type MessageView struct {
	ID          string        `json:"_id"`
	Sender      *UserSummary  `json:"sender"`
	Receiver    *UserSummary  `json:"receiver"`
	Group       *GroupSummary `json:"group"`
	Message     string        `json:"message"`
	IsGroupChat bool          `json:"isGroupChat"`
	Timestamp   int64         `json:"timestamp"`
}

// GroupView is a populated group with its member summaries.
type GroupView struct {
	ID        GroupID       `json:"_id"`
	Name      string        `json:"name"`
	Users     []UserSummary `json:"users"`
	CreatedAt int64         `json:"createdAt"`
}

// MembersAddedView is the payload of usersAddedToGroup.
type MembersAddedView struct {
	GroupID GroupID   `json:"groupId"`
	UserIDs []UserID  `json:"userIds"`
	Added   []UserID  `json:"added"`
	Group   GroupView `json:"group"`
}

// ActionError is sent back to the originating connection only when an action fails.
type ActionError struct {
	Action Event  `json:"action"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

func ToGroupSummary(g Group) GroupSummary {
	return GroupSummary{ID: g.ID, Name: g.Name, CreatedAt: Millis(g.CreatedAt)}
}

// Millis renders a timestamp as epoch milliseconds, the unit clients sort on.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
