package projection_test

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"social-chat/domain/chat"
	"social-chat/errors"
	"social-chat/mocks"
	"social-chat/projection"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPopulator_Messages_Resolves_Users_And_Groups(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	groups := mocks.NewMockIGroupRepository(ctrl)
	at := time.Now().UTC()

	individual := chat.NewIndividualMessage("alice", "bob", "hi")
	individual.ID, individual.CreatedAt = uuid.New(), at
	inGroup := chat.NewGroupMessage("alice", "g1", "hello all")
	inGroup.ID, inGroup.CreatedAt = uuid.New(), at

	// Given alice has a profile, bob is unknown, and g1 exists
	users.EXPECT().GetUsers(gomock.InAnyOrder([]chat.UserID{"alice", "bob"})).
		Return(map[chat.UserID]chat.User{
			"alice": {ID: "alice", Username: "alice", Email: "alice@mail.io", FullName: "Alice Liddell"},
		}, nil)
	groups.EXPECT().GetGroup(chat.GroupID("g1")).
		Return(chat.NewGroup("g1", "wonderland", []chat.UserID{"alice"}, at), nil)

	populator := projection.NewPopulator(users, groups, chat.ChatProjection, slog.Default())

	// When both messages are populated in one batch
	views := populator.Messages([]chat.Message{individual, inGroup})

	// Then the order is kept and the summaries are attached
	req.Len(views, 2)
	req.Equal(individual.ID.String(), views[0].ID)
	req.Equal("Alice Liddell", views[0].Sender.FullName)
	req.Equal(chat.UnknownUser("bob"), *views[0].Receiver)
	req.Nil(views[0].Group)
	req.Equal(at.UnixMilli(), views[0].Timestamp)

	req.True(views[1].IsGroupChat)
	req.Nil(views[1].Receiver)
	req.Equal("wonderland", views[1].Group.Name)
}

func TestPopulator_Degrades_When_Lookups_Fail(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	groups := mocks.NewMockIGroupRepository(ctrl)

	users.EXPECT().GetUsers(gomock.Any()).Return(nil, fmt.Errorf("storage down"))
	groups.EXPECT().GetGroup(gomock.Any()).Return(chat.Group{}, errors.ErrGroupNotFound)

	populator := projection.NewPopulator(users, groups, chat.ChatProjection, slog.Default())
	message := chat.NewGroupMessage("alice", "g1", "hello")
	message.ID = uuid.New()

	view := populator.Message(message)

	req.Equal(chat.UnknownUser("alice"), *view.Sender)
	req.Equal(chat.GroupSummary{ID: "g1"}, *view.Group)
}

func TestPopulator_Groups_Single_Lookup(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	at := time.Now().UTC()

	users.EXPECT().GetUsers(gomock.InAnyOrder([]chat.UserID{"alice", "bob", "carol"})).
		Return(map[chat.UserID]chat.User{
			"bob": {ID: "bob", Username: "bobby", Email: "bob@mail.io"},
		}, nil).
		Times(1)

	populator := projection.NewPopulator(users, mocks.NewMockIGroupRepository(ctrl), chat.ChatProjection, slog.Default())

	views := populator.Groups([]chat.Group{
		chat.NewGroup("g1", "one", []chat.UserID{"alice", "bob"}, at),
		chat.NewGroup("g2", "two", []chat.UserID{"bob", "carol"}, at),
	})

	req.Len(views, 2)
	req.Equal([]chat.UserSummary{chat.UnknownUser("alice"), {ID: "bob", Username: "bobby"}}, views[0].Users)
	req.Equal("two", views[1].Name)
}
