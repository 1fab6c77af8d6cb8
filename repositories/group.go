//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// maxConflictRetries bounds the optimistic retries of a membership update.
const maxConflictRetries = 64

type IGroupRepository interface {
	CreateGroup(group chat.Group) error
	GetGroup(id chat.GroupID) (chat.Group, error)
	ListGroups() ([]chat.Group, error)
	ListGroupsByMember(userID chat.UserID) ([]chat.Group, error)
	AddMembers(id chat.GroupID, members []chat.UserID, at time.Time) (MembershipChange, error)
}

// MembershipChange is the outcome of AddMembers.
// Created is set when the group did not exist and has been materialized.
type MembershipChange struct {
	Group   chat.Group
	Added   []chat.UserID
	Created bool
}

type GroupRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewGroupRepository(db *badger.DB, log *slog.Logger) *GroupRepository {
	return &GroupRepository{db: db, log: log}
}

type DiskGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

// CreateGroup stores a new group with its member index entries.
func (r *GroupRepository) CreateGroup(group chat.Group) error {
	group.Members = lo.Uniq(group.Members)
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(groupKey(group.ID)); err == nil {
			return errors.ErrGroupAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return putGroup(txn, group, group.Members)
	})
}

func (r *GroupRepository) GetGroup(id chat.GroupID) (chat.Group, error) {
	var group chat.Group
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		group, err = getGroup(txn, id)
		return err
	})
	return group, err
}

// ListGroups returns every group, newest first.
func (r *GroupRepository) ListGroups() ([]chat.Group, error) {
	var groups []chat.Group
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(groupPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			group, err := decodeGroup(value)
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	sortNewestFirst(groups)
	return groups, err
}

// ListGroupsByMember resolves the member index of a user, newest group first.
func (r *GroupRepository) ListGroupsByMember(userID chat.UserID) ([]chat.Group, error) {
	var groups []chat.Group
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(groupMemberIndex(userID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			groupID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			group, err := getGroup(txn, chat.GroupID(groupID))
			if errors.Is(err, errors.ErrGroupNotFound) {
				r.log.Warn("Dangling member index entry", "user_id", userID, "group_id", string(groupID))
				continue
			}
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	sortNewestFirst(groups)
	return groups, err
}

// AddMembers applies the set-union of the stored members and the given ids in a
// single transaction. An unknown group is materialized with an empty name.
// Concurrent unions on the same group conflict in Badger and are retried, so no
// member can be lost.
func (r *GroupRepository) AddMembers(id chat.GroupID, members []chat.UserID, at time.Time) (MembershipChange, error) {
	for attempt := 0; ; attempt++ {
		var change MembershipChange
		err := r.db.Update(func(txn *badger.Txn) error {
			group, err := getGroup(txn, id)
			switch {
			case errors.Is(err, errors.ErrGroupNotFound):
				group = chat.NewGroup(id, "", nil, at)
				change.Created = true
			case err != nil:
				return err
			}
			change.Added = group.AddMembers(members...)
			change.Group = group
			if !change.Created && len(change.Added) == 0 {
				return nil
			}
			return putGroup(txn, group, change.Added)
		})
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			r.log.Debug("Membership update conflicted, retrying", "group_id", id, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return MembershipChange{}, err
		}
		return change, nil
	}
}

func getGroup(txn *badger.Txn, id chat.GroupID) (chat.Group, error) {
	item, err := txn.Get(groupKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return chat.Group{}, fmt.Errorf("%w: %s", errors.ErrGroupNotFound, id)
	}
	if err != nil {
		return chat.Group{}, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return chat.Group{}, err
	}
	return decodeGroup(value)
}

// putGroup writes the group record and the member index entries of newMembers.
func putGroup(txn *badger.Txn, group chat.Group, newMembers []chat.UserID) error {
	bytes, err := json.Marshal(fromGroup(group))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	if err := txn.Set(groupKey(group.ID), bytes); err != nil {
		return err
	}
	for _, member := range newMembers {
		if err := txn.Set(groupMemberKey(member, group.ID), []byte(group.ID)); err != nil {
			return err
		}
	}
	return nil
}

func sortNewestFirst(groups []chat.Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
}

func decodeGroup(value []byte) (chat.Group, error) {
	var disk DiskGroup
	if err := json.Unmarshal(value, &disk); err != nil {
		return chat.Group{}, err
	}
	return chat.Group{
		ID:   chat.GroupID(disk.ID),
		Name: disk.Name,
		Members: lo.Map(disk.Members, func(m string, _ int) chat.UserID {
			return chat.UserID(m)
		}),
		CreatedAt: time.Unix(0, disk.CreatedAt).UTC(),
	}, nil
}

func fromGroup(group chat.Group) DiskGroup {
	return DiskGroup{
		ID:   string(group.ID),
		Name: group.Name,
		Members: lo.Map(group.Members, func(m chat.UserID, _ int) string {
			return string(m)
		}),
		CreatedAt: group.CreatedAt.UnixNano(),
	}
}
