//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

// IUserRepository is the read side of the identity service this layer collaborates with,
// plus the upsert used to seed and update profiles.
type IUserRepository interface {
	UpsertUser(user chat.User) error
	GetUser(id chat.UserID) (chat.User, error)
	GetUsers(ids []chat.UserID) (map[chat.UserID]chat.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// DiskUser is the persisted profile. Email is stored but never leaves the repository
// through a chat record.
type DiskUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CurrentTown  string `json:"currentTown,omitempty"`
}

func (u *UserRepository) UpsertUser(user chat.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user id is required", errors.ErrInvalidAction)
	}
	data, err := json.Marshal(DiskUser{
		ID:           string(user.ID),
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		ProfileImage: user.ProfileImage,
		CurrentTown:  user.CurrentTown,
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
}

func (u *UserRepository) GetUser(id chat.UserID) (chat.User, error) {
	var user chat.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

// GetUsers resolves a batch of identities in one read transaction.
// Unknown identities are absent from the result.
func (u *UserRepository) GetUsers(ids []chat.UserID) (map[chat.UserID]chat.User, error) {
	users := make(map[chat.UserID]chat.User, len(ids))
	err := u.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, ok := users[id]; ok {
				continue
			}
			user, err := getUser(txn, id)
			if errors.Is(err, errors.ErrUserNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = user
		}
		return nil
	})
	return users, err
}

func getUser(txn *badger.Txn, id chat.UserID) (chat.User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return chat.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, id)
	}
	if err != nil {
		return chat.User{}, err
	}
	var disk DiskUser
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	})
	if err != nil {
		return chat.User{}, err
	}
	return chat.User{
		ID:           chat.UserID(disk.ID),
		Username:     disk.Username,
		Email:        disk.Email,
		FullName:     disk.FullName,
		ProfileImage: disk.ProfileImage,
		CurrentTown:  disk.CurrentTown,
	}, nil
}
