package chat

import (
	"testing"
	"time"

	"social-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		wantErr bool
	}{
		{"Valid individual message", NewIndividualMessage("alice", "bob", "hello"), false},
		{"Valid group message", NewGroupMessage("alice", "g1", "hello"), false},
		{"Missing sender", NewIndividualMessage("", "bob", "hello"), true},
		{"Blank body", NewIndividualMessage("alice", "bob", "   "), true},
		{"Receiver and group both set", Message{SenderID: "alice", ReceiverID: "bob", GroupID: "g1", Content: "x", IsGroup: true}, true},
		{"Neither receiver nor group", Message{SenderID: "alice", Content: "x"}, true},
		{"Group without isGroup flag", Message{SenderID: "alice", GroupID: "g1", Content: "x"}, true},
		{"Receiver with isGroup flag", Message{SenderID: "alice", ReceiverID: "bob", Content: "x", IsGroup: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.message.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrInvalidMessage)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMessage_Participants(t *testing.T) {
	req := require.New(t)

	req.Equal([]UserID{"alice", "bob"}, NewIndividualMessage("alice", "bob", "hi").Participants())
	// A note to self is delivered once
	req.Equal([]UserID{"alice"}, NewIndividualMessage("alice", "alice", "hi").Participants())
}

func TestChannels_AreNamespaced(t *testing.T) {
	req := require.New(t)

	req.NotEqual(UserChannel("42"), GroupChannel("42"))
	req.True(GroupChannel("42").IsGroup())
	req.False(UserChannel("42").IsGroup())
}

func TestMillis(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	req.Equal(at.UnixMilli(), Millis(at))
	req.Zero(Millis(time.Time{}))
}
