//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type IMessageRepository interface {
	StoreMessage(message chat.Message) (chat.Message, error)
	ListRecent(filter chat.MessageFilter, cursor *string, limit int) ([]chat.Message, *string, error)
	FindByIDs(ids []uuid.UUID) ([]chat.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type DiskMessage struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
	Group    string `json:"group,omitempty"`
	Content  string `json:"content"`
	IsGroup  bool   `json:"isGroup"`
	At       int64  `json:"at"`
}

// StoreMessage persists a message and its secondary indexes in one transaction.
// The primary key is "msg:{timestamp_padded}:{uuid}"; every index entry shares the
// same suffix and points back to the primary key, so all filters iterate in
// chronological order with a plain prefix scan.
func (m *MessageRepository) StoreMessage(message chat.Message) (chat.Message, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = m.now()
	}
	message.CreatedAt = message.CreatedAt.UTC()
	if err := message.Validate(); err != nil {
		return chat.Message{}, err
	}

	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return chat.Message{}, fmt.Errorf("marshal failed: %w", err)
	}

	suffix := sortKey(message)
	primary := []byte(messagePrefix + suffix)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(primary, bytes); err != nil {
			return err
		}
		if err := txn.Set([]byte(messageIDPrefix+message.ID.String()), primary); err != nil {
			return err
		}
		for _, prefix := range indexPrefixes(message) {
			if err := txn.Set([]byte(prefix+suffix), primary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return chat.Message{}, err
	}
	return message, nil
}

func indexPrefixes(message chat.Message) []string {
	if message.IsGroup {
		return []string{groupIndex(message.GroupID), userIndex(message.SenderID)}
	}
	prefixes := lo.Map(message.Participants(), func(id chat.UserID, _ int) string {
		return userIndex(id)
	})
	return append(prefixes, pairIndex(message.SenderID, message.ReceiverID))
}

// ListRecent walks the prefix selected by the filter from the newest entry backwards.
// A nil cursor starts from the most recent message; the returned cursor is nil once
// the history is exhausted.
func (m *MessageRepository) ListRecent(filter chat.MessageFilter, cursor *string, limit int) ([]chat.Message, *string, error) {
	prefixStr, err := filterPrefix(filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errors.ErrInvalidAction, err)
	}
	limit = normalizeLimit(limit)

	var messages []chat.Message
	var lastKey string
	var hasMore bool
	err = m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// 0xFF sorts after every digit, so the seek lands on the newest entry
			seekKey = append([]byte(prefixStr), 0xFF)
		default:
			seekKey = []byte(prefixStr + *cursor)
		}
		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == prefixStr+*cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix) && len(messages) < limit; it.Next() {
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if filter.Kind != chat.FilterAll {
				if value, err = readValue(txn, value); err != nil {
					return err
				}
			}
			message, err := decodeMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		hasMore = it.ValidForPrefix(prefix)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !hasMore {
		return messages, nil, nil
	}
	m.log.Debug("More messages available", "limit", limit, "cursor", lastKey)
	return messages, &lastKey, nil
}

// FindByIDs resolves message ids, skipping the ones that are not stored.
func (m *MessageRepository) FindByIDs(ids []uuid.UUID) ([]chat.Message, error) {
	var messages []chat.Message
	err := m.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(messageIDPrefix + id.String()))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			primary, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			value, err := readValue(txn, primary)
			if err != nil {
				return err
			}
			message, err := decodeMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func readValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, fmt.Errorf("dangling index entry %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func decodeMessage(value []byte) (chat.Message, error) {
	var disk DiskMessage
	if err := json.Unmarshal(value, &disk); err != nil {
		return chat.Message{}, err
	}
	return toMessage(disk)
}

func fromMessage(message chat.Message) DiskMessage {
	return DiskMessage{
		ID:       message.ID.String(),
		Sender:   string(message.SenderID),
		Receiver: string(message.ReceiverID),
		Group:    string(message.GroupID),
		Content:  message.Content,
		IsGroup:  message.IsGroup,
		At:       message.CreatedAt.UnixNano(),
	}
}

func toMessage(disk DiskMessage) (chat.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return chat.Message{}, err
	}
	return chat.Message{
		ID:         parsedID,
		SenderID:   chat.UserID(disk.Sender),
		ReceiverID: chat.UserID(disk.Receiver),
		GroupID:    chat.GroupID(disk.Group),
		Content:    disk.Content,
		IsGroup:    disk.IsGroup,
		CreatedAt:  time.Unix(0, disk.At).UTC(),
	}, nil
}
