package runtime

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestMembership_CreateGroup_Subscribes_And_Announces(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, EngineConfig{})
	creator, bob, carol := f.connect(t, "alice"), f.connect(t, "bob"), f.connect(t, "carol")

	// When alice creates a group with bob
	view, err := f.membership.CreateGroup(ctx, "alice", creator.ID(),
		chat.CreateGroupCommand{GroupName: " friends ", UserIDs: []chat.UserID{"bob", "bob"}})

	// Then the group is stored with deduplicated members
	req.NoError(err)
	req.Equal("friends", view.Name)
	group, err := f.groups.GetGroup(view.ID)
	req.NoError(err)
	req.Equal([]chat.UserID{"bob"}, group.Members)

	// And the creator and bob are told, carol is not
	req.Equal([]chat.Event{chat.EventGroupCreated}, creator.Events())
	req.Equal([]chat.Event{chat.EventGroupCreated}, bob.Events())
	req.Empty(carol.Received())
	req.Equal(2, f.registry.Subscribers(chat.GroupChannel(view.ID)))
}

func TestMembership_CreateGroup_Always_Creates(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, EngineConfig{})
	cmd := chat.CreateGroupCommand{GroupName: "same", UserIDs: []chat.UserID{"bob"}}

	first, err := f.membership.CreateGroup(context.Background(), "alice", "", cmd)
	req.NoError(err)
	second, err := f.membership.CreateGroup(context.Background(), "alice", "", cmd)
	req.NoError(err)

	req.NotEqual(first.ID, second.ID)
	groups, err := f.groups.ListGroups()
	req.NoError(err)
	req.Len(groups, 2)
}

func TestMembership_CreateGroup_Requires_Members(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, EngineConfig{})

	_, err := f.membership.CreateGroup(context.Background(), "alice", "", chat.CreateGroupCommand{GroupName: "empty"})

	req.ErrorIs(err, errors.ErrInvalidAction)
}

func TestMembership_AddUsers_Notifies_Every_Member_Once(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, EngineConfig{})
	req.NoError(f.groups.CreateGroup(chat.NewGroup("g1", "friends", []chat.UserID{"Y", "Z"}, f.membership.now())))
	x, y, z := f.connect(t, "X"), f.connect(t, "Y"), f.connect(t, "Z")

	// When X and Y are added to {Y, Z}
	view, err := f.membership.AddUsers(ctx, chat.AddUsersToGroupCommand{GroupID: "g1", UserIDs: []chat.UserID{"X", "Y"}})

	// Then the members are {X, Y, Z} and each private channel got exactly one notification
	req.NoError(err)
	req.ElementsMatch([]chat.UserID{"X", "Y", "Z"}, view.UserIDs)
	req.Equal([]chat.UserID{"X"}, view.Added)
	for _, sink := range []*Sink{x, y, z} {
		req.Equal([]chat.Event{chat.EventUsersAddedToGroup}, sink.Events())
	}

	// And the connections of X and Y now listen on the group channel
	req.Equal(2, f.registry.Subscribers(chat.GroupChannel("g1")))

	// And repeating the call leaves the membership unchanged
	again, err := f.membership.AddUsers(ctx, chat.AddUsersToGroupCommand{GroupID: "g1", UserIDs: []chat.UserID{"X", "Y"}})
	req.NoError(err)
	req.ElementsMatch([]chat.UserID{"X", "Y", "Z"}, again.UserIDs)
	req.Empty(again.Added)
	req.NotNil(again.Added)
}

func TestMembership_AddUsers_Materializes_Unknown_Group(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, EngineConfig{})

	view, err := f.membership.AddUsers(context.Background(), chat.AddUsersToGroupCommand{GroupID: "fresh", UserIDs: []chat.UserID{"alice", "bob"}})

	req.NoError(err)
	req.ElementsMatch([]chat.UserID{"alice", "bob"}, view.UserIDs)
	group, err := f.groups.GetGroup("fresh")
	req.NoError(err)
	req.ElementsMatch([]chat.UserID{"alice", "bob"}, group.Members)
}

func TestMembership_AddUsers_Concurrently_Loses_No_Member(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, EngineConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.membership.AddUsers(context.Background(), chat.AddUsersToGroupCommand{
				GroupID: "crowd",
				UserIDs: []chat.UserID{chat.UserID(fmt.Sprintf("user-%d", i))},
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	group, err := f.groups.GetGroup("crowd")
	req.NoError(err)
	req.Len(group.Members, 30)
	req.Zero(f.membership.locks.size())
}

func TestMembership_ChannelsOf_Survives_Reconnection(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, EngineConfig{})
	_, err := f.membership.AddUsers(context.Background(), chat.AddUsersToGroupCommand{GroupID: "g1", UserIDs: []chat.UserID{"alice"}})
	req.NoError(err)

	channels, err := f.membership.ChannelsOf("alice")

	req.NoError(err)
	req.Equal([]chat.ChannelID{chat.GroupChannel("g1")}, channels)
}

func TestKeyedMutex_Serializes_Same_Key(t *testing.T) {
	req := require.New(t)
	locks := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("g1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	req.Equal(100, counter)
	req.Zero(locks.size())
}
