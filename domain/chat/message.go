// Package chat contains the core concepts of the messaging layer.
// Messages are immutable once stored and validated by the domain.
// No runtime, network, or storage logic should be added here.
package chat

import (
	"fmt"
	"strings"
	"time"

	"social-chat/errors"

	"github.com/google/uuid"
)

type UserID string

type GroupID string

// Message represents an immutable chat record, either between two users or inside a group.
type Message struct {
	ID         uuid.UUID
	SenderID   UserID
	ReceiverID UserID
	GroupID    GroupID
	Content    string
	IsGroup    bool
	CreatedAt  time.Time
}

func NewIndividualMessage(sender, receiver UserID, content string) Message {
	return Message{SenderID: sender, ReceiverID: receiver, Content: content}
}

func NewGroupMessage(sender UserID, group GroupID, content string) Message {
	return Message{SenderID: sender, GroupID: group, Content: content, IsGroup: true}
}

// Validate enforces that exactly one of receiver or group is set, consistently with IsGroup.
func (m Message) Validate() error {
	if strings.TrimSpace(string(m.SenderID)) == "" {
		return fmt.Errorf("%w: sender is required", errors.ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: message body is required", errors.ErrInvalidMessage)
	}
	hasReceiver := m.ReceiverID != ""
	hasGroup := m.GroupID != ""
	switch {
	case hasReceiver == hasGroup:
		return fmt.Errorf("%w: exactly one of receiver or group must be set", errors.ErrInvalidMessage)
	case m.IsGroup != hasGroup:
		return fmt.Errorf("%w: isGroup does not match the recipient", errors.ErrInvalidMessage)
	}
	return nil
}

// Participants returns the users entitled to an individual message.
// A message sent to oneself yields a single user.
func (m Message) Participants() []UserID {
	if m.SenderID == m.ReceiverID {
		return []UserID{m.SenderID}
	}
	return []UserID{m.SenderID, m.ReceiverID}
}
