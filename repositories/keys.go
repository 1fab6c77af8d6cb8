package repositories

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"social-chat/domain/chat"
)

const (
	messagePrefix     = "msg:"
	messageIDPrefix   = "msgid:"
	userIndexPrefix   = "idx:user:"
	groupIndexPrefix  = "idx:group:"
	pairIndexPrefix   = "idx:pair:"
	groupPrefix       = "group:"
	groupMemberPrefix = "grpmember:"
	userPrefix        = "user:"
)

// keyPart escapes an identity so that a ':' inside it cannot extend a prefix
// into the key space of another identity.
func keyPart(s string) string {
	return url.QueryEscape(s)
}

// sortKey is "{timestamp_padded}:{uuid}". The 19-digit zero padding keeps the
// lexicographical order chronological and the uuid disambiguates equal timestamps.
func sortKey(m chat.Message) string {
	return fmt.Sprintf("%019d:%s", m.CreatedAt.UnixNano(), m.ID)
}

func userIndex(id chat.UserID) string {
	return userIndexPrefix + keyPart(string(id)) + ":"
}

func groupIndex(id chat.GroupID) string {
	return groupIndexPrefix + keyPart(string(id)) + ":"
}

// pairIndex is independent of the direction of the conversation.
func pairIndex(a, b chat.UserID) string {
	parts := []string{keyPart(string(a)), keyPart(string(b))}
	sort.Strings(parts)
	return pairIndexPrefix + strings.Join(parts, "|") + ":"
}

func groupKey(id chat.GroupID) []byte {
	return []byte(groupPrefix + keyPart(string(id)))
}

func groupMemberIndex(userID chat.UserID) string {
	return groupMemberPrefix + keyPart(string(userID)) + ":"
}

func groupMemberKey(userID chat.UserID, groupID chat.GroupID) []byte {
	return []byte(groupMemberIndex(userID) + keyPart(string(groupID)))
}

func userKey(id chat.UserID) []byte {
	return []byte(userPrefix + keyPart(string(id)))
}

func filterPrefix(filter chat.MessageFilter) (string, error) {
	switch filter.Kind {
	case chat.FilterAll:
		return messagePrefix, nil
	case chat.FilterUser:
		if filter.UserID == "" {
			return "", fmt.Errorf("user filter requires a user id")
		}
		return userIndex(filter.UserID), nil
	case chat.FilterGroup:
		if filter.GroupID == "" {
			return "", fmt.Errorf("group filter requires a group id")
		}
		return groupIndex(filter.GroupID), nil
	case chat.FilterBetween:
		if filter.UserID == "" || filter.OtherID == "" {
			return "", fmt.Errorf("between filter requires two user ids")
		}
		return pairIndex(filter.UserID, filter.OtherID), nil
	default:
		return "", fmt.Errorf("unknown filter kind %d", filter.Kind)
	}
}
