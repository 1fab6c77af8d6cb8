//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldID          = "_id"
	fieldContent     = "content"
	fieldParticipant = "participant"
	fieldGroup       = "group"
	fieldAt          = "at"
)

type IMessageIndex interface {
	Index(message chat.Message) error
	Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, error)
	Close() error
}

// SearchQuery scopes a full-text search to a group or, when GroupID is empty,
// to the messages a user took part in.
type SearchQuery struct {
	Text    string
	UserID  chat.UserID
	GroupID chat.GroupID
	Limit   int
}

// MessageIndex keeps a bluge full-text index of message bodies next to the Badger store.
// Badger stays the source of truth: the index only returns ids.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(config bluge.Config, log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, fmt.Errorf("unable to open message index: %w", err)
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

func (m *MessageIndex) Index(message chat.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField(fieldContent, message.Content)).
		AddField(bluge.NewDateTimeField(fieldAt, message.CreatedAt))
	doc.AddField(bluge.NewKeywordField(fieldParticipant, string(message.SenderID)))
	if message.IsGroup {
		doc.AddField(bluge.NewKeywordField(fieldGroup, string(message.GroupID)))
	} else if message.ReceiverID != message.SenderID {
		doc.AddField(bluge.NewKeywordField(fieldParticipant, string(message.ReceiverID)))
	}
	return m.writer.Update(doc.ID(), doc)
}

// Search returns the ids of the best matching messages, most relevant first.
func (m *MessageIndex) Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, error) {
	if query.Text == "" || (query.UserID == "" && query.GroupID == "") {
		return nil, fmt.Errorf("%w: search requires a text and a scope", errors.ErrInvalidAction)
	}
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("unable to open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			m.log.Warn("Unable to close index reader", "error", err)
		}
	}()

	q := bluge.NewBooleanQuery().AddMust(bluge.NewMatchQuery(query.Text).SetField(fieldContent))
	if query.GroupID != "" {
		q.AddMust(bluge.NewTermQuery(string(query.GroupID)).SetField(fieldGroup))
	} else {
		q.AddMust(bluge.NewTermQuery(string(query.UserID)).SetField(fieldParticipant))
	}

	it, err := reader.Search(ctx, bluge.NewTopNSearch(normalizeLimit(query.Limit), q))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := it.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field != fieldID {
				return true
			}
			id, parseErr := uuid.ParseBytes(value)
			if parseErr != nil {
				m.log.Warn("Skipping unparsable document id", "id", string(value))
				return false
			}
			ids = append(ids, id)
			return false
		})
		if err != nil {
			break
		}
		match, err = it.Next()
	}
	return ids, err
}

func (m *MessageIndex) Close() error {
	return m.writer.Close()
}
