package repositories

import (
	"testing"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/stretchr/testify/require"
)

func Test_Upsert_And_Get_Users(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openBadger(t))
	neo := chat.User{ID: "u1", Username: "neo", Email: "neo@matrix.io", FullName: "Thomas Anderson"}

	req.NoError(repository.UpsertUser(neo))
	found, err := repository.GetUser("u1")
	req.NoError(err)
	req.Equal(neo, found)

	// An update replaces the profile
	neo.CurrentTown = "Zion"
	req.NoError(repository.UpsertUser(neo))
	found, err = repository.GetUser("u1")
	req.NoError(err)
	req.Equal("Zion", found.CurrentTown)

	_, err = repository.GetUser("ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_GetUsers_Skips_Unknown(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openBadger(t))
	req.NoError(repository.UpsertUser(chat.User{ID: "u1", Username: "neo"}))
	req.NoError(repository.UpsertUser(chat.User{ID: "u2", Username: "trinity"}))

	users, err := repository.GetUsers([]chat.UserID{"u1", "u2", "u1", "ghost"})

	req.NoError(err)
	req.Len(users, 2)
	req.Equal("trinity", users["u2"].Username)
}

func Test_Upsert_Requires_Identity(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openBadger(t))

	req.ErrorIs(repository.UpsertUser(chat.User{Username: "nobody"}), errors.ErrInvalidAction)
}
