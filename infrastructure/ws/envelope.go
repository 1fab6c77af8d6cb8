package ws

import (
	"encoding/json"
	"fmt"

	"social-chat/domain/chat"
	"social-chat/errors"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event chat.Event      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeAction reads an inbound frame into the command named by its event.
func DecodeAction(raw []byte) (chat.Action, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}

	switch envelope.Event {
	case chat.EventIndividual:
		return decode[chat.IndividualMessageCommand](envelope.Data)
	case chat.EventGroup:
		return decode[chat.GroupMessageCommand](envelope.Data)
	case chat.EventCreateGroup:
		return decode[chat.CreateGroupCommand](envelope.Data)
	case chat.EventAddUsersToGroup:
		return decode[chat.AddUsersToGroupCommand](envelope.Data)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownAction, envelope.Event)
	}
}

func decode[T chat.Action](data json.RawMessage) (chat.Action, error) {
	var action T
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: missing data for %s", errors.ErrInvalidMessage, action.Event())
	}
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return action, nil
}

// EncodeNotification renders an outbound notification as an envelope.
func EncodeNotification(n chat.Notification) ([]byte, error) {
	return json.Marshal(n)
}
