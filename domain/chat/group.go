package chat

import (
	"time"

	"github.com/samber/lo"
)

// Group is a named set of members sharing a delivery room.
// Members is always deduplicated; insertion order carries no meaning.
type Group struct {
	ID        GroupID
	Name      string
	Members   []UserID
	CreatedAt time.Time
}

func NewGroup(id GroupID, name string, members []UserID, at time.Time) Group {
	return Group{ID: id, Name: name, Members: lo.Uniq(members), CreatedAt: at}
}

func (g Group) HasMember(userID UserID) bool {
	return lo.Contains(g.Members, userID)
}

// AddMembers performs the set-union of the current members and the given ids.
// It returns the ids that were not members before.
func (g *Group) AddMembers(ids ...UserID) []UserID {
	var added []UserID
	for _, id := range lo.Uniq(ids) {
		if id == "" || g.HasMember(id) {
			continue
		}
		g.Members = append(g.Members, id)
		added = append(added, id)
	}
	return added
}
