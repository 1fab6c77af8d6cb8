package chat

// FilterKind selects which history a query walks.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterUser
	FilterGroup
	FilterBetween
)

// MessageFilter describes one of the supported history queries.
type MessageFilter struct {
	Kind    FilterKind
	UserID  UserID
	OtherID UserID
	GroupID GroupID
}

func AllMessages() MessageFilter {
	return MessageFilter{Kind: FilterAll}
}

// MessagesOfUser matches messages where the user is sender or receiver.
func MessagesOfUser(id UserID) MessageFilter {
	return MessageFilter{Kind: FilterUser, UserID: id}
}

// MessagesInGroup filters strictly by group identity.
func MessagesInGroup(id GroupID) MessageFilter {
	return MessageFilter{Kind: FilterGroup, GroupID: id}
}

// MessagesBetween matches individual messages exchanged by two users in either direction.
func MessagesBetween(a, b UserID) MessageFilter {
	return MessageFilter{Kind: FilterBetween, UserID: a, OtherID: b}
}
