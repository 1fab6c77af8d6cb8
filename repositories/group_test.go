package repositories

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/stretchr/testify/require"
)

func Test_CreateGroup_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openBadger(t), slog.Default())
	group := chat.NewGroup("g1", "friends", []chat.UserID{"alice", "bob"}, time.Now().UTC())

	req.NoError(repository.CreateGroup(group))
	req.ErrorIs(repository.CreateGroup(group), errors.ErrGroupAlreadyExists)

	found, err := repository.GetGroup("g1")
	req.NoError(err)
	req.Equal(group, found)

	_, err = repository.GetGroup("unknown")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func Test_ListGroups_Newest_First_And_By_Member(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openBadger(t), slog.Default())
	at := time.Now().UTC()

	old := chat.NewGroup("g-old", "old", []chat.UserID{"alice"}, at)
	recent := chat.NewGroup("g-new", "new", []chat.UserID{"alice", "bob"}, at.Add(time.Minute))
	req.NoError(repository.CreateGroup(old))
	req.NoError(repository.CreateGroup(recent))

	all, err := repository.ListGroups()
	req.NoError(err)
	req.Equal([]chat.Group{recent, old}, all)

	ofAlice, err := repository.ListGroupsByMember("alice")
	req.NoError(err)
	req.Equal([]chat.Group{recent, old}, ofAlice)

	ofBob, err := repository.ListGroupsByMember("bob")
	req.NoError(err)
	req.Equal([]chat.Group{recent}, ofBob)

	ofCarol, err := repository.ListGroupsByMember("carol")
	req.NoError(err)
	req.Empty(ofCarol)
}

func Test_AddMembers_Is_Idempotent_Union(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openBadger(t), slog.Default())
	at := time.Now().UTC()
	req.NoError(repository.CreateGroup(chat.NewGroup("g1", "friends", []chat.UserID{"Y", "Z"}, at)))

	// When X and Y are added
	change, err := repository.AddMembers("g1", []chat.UserID{"X", "Y"}, at)

	// Then only X is new
	req.NoError(err)
	req.False(change.Created)
	req.Equal([]chat.UserID{"X"}, change.Added)
	req.ElementsMatch([]chat.UserID{"X", "Y", "Z"}, change.Group.Members)

	// And repeating the call changes nothing
	change, err = repository.AddMembers("g1", []chat.UserID{"X", "Y"}, at)
	req.NoError(err)
	req.Empty(change.Added)
	req.ElementsMatch([]chat.UserID{"X", "Y", "Z"}, change.Group.Members)

	ofX, err := repository.ListGroupsByMember("X")
	req.NoError(err)
	req.Len(ofX, 1)
}

func Test_AddMembers_Materializes_Unknown_Group(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openBadger(t), slog.Default())

	change, err := repository.AddMembers("g-new", []chat.UserID{"alice", "alice", "bob"}, time.Now().UTC())

	req.NoError(err)
	req.True(change.Created)
	req.Empty(change.Group.Name)
	req.ElementsMatch([]chat.UserID{"alice", "bob"}, change.Group.Members)

	found, err := repository.GetGroup("g-new")
	req.NoError(err)
	req.ElementsMatch([]chat.UserID{"alice", "bob"}, found.Members)
}

func Test_AddMembers_Concurrently_Loses_No_Member(t *testing.T) {
	req := require.New(t)
	repository := NewGroupRepository(openBadger(t), slog.Default())
	at := time.Now().UTC()
	req.NoError(repository.CreateGroup(chat.NewGroup("g1", "crowd", nil, at)))

	// Given 20 concurrent additions of distinct users
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repository.AddMembers("g1", []chat.UserID{chat.UserID(fmt.Sprintf("user-%d", i))}, at)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then every one of them is a member
	group, err := repository.GetGroup("g1")
	req.NoError(err)
	req.Len(group.Members, 20)
}
