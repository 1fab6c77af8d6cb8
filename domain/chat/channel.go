package chat

import "strings"

// ChannelID names a delivery target. User and group channels live in separate
// namespaces so that a user id can never collide with a group id.
type ChannelID string

const (
	userChannelPrefix  = "user:"
	groupChannelPrefix = "group:"
)

func UserChannel(id UserID) ChannelID {
	return ChannelID(userChannelPrefix + string(id))
}

func GroupChannel(id GroupID) ChannelID {
	return ChannelID(groupChannelPrefix + string(id))
}

func (c ChannelID) IsGroup() bool {
	return strings.HasPrefix(string(c), groupChannelPrefix)
}
