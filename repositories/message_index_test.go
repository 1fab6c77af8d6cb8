package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openIndex(t *testing.T) *MessageIndex {
	t.Helper()
	index, err := NewMessageIndex(bluge.DefaultConfig(t.TempDir()), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexed(t *testing.T, index *MessageIndex, message chat.Message) chat.Message {
	t.Helper()
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	require.NoError(t, index.Index(message))
	return message
}

func Test_Search_Is_Scoped_To_Participant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openIndex(t)

	toBob := indexed(t, index, chat.NewIndividualMessage("alice", "bob", "see you at the concert tonight"))
	indexed(t, index, chat.NewIndividualMessage("carol", "dave", "the concert was great"))
	indexed(t, index, chat.NewIndividualMessage("alice", "bob", "bring an umbrella"))

	ids, err := index.Search(ctx, SearchQuery{Text: "concert", UserID: "bob"})
	req.NoError(err)
	req.Equal([]uuid.UUID{toBob.ID}, ids)

	ids, err = index.Search(ctx, SearchQuery{Text: "concert", UserID: "erin"})
	req.NoError(err)
	req.Empty(ids)
}

func Test_Search_Is_Scoped_To_Group(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openIndex(t)

	inGroup := indexed(t, index, chat.NewGroupMessage("alice", "g1", "pizza on friday"))
	indexed(t, index, chat.NewGroupMessage("alice", "g2", "pizza on saturday"))

	ids, err := index.Search(ctx, SearchQuery{Text: "pizza", GroupID: "g1"})
	req.NoError(err)
	req.Equal([]uuid.UUID{inGroup.ID}, ids)
}

func Test_Search_Requires_Text_And_Scope(t *testing.T) {
	req := require.New(t)
	index := openIndex(t)

	_, err := index.Search(context.Background(), SearchQuery{Text: "pizza"})
	req.ErrorIs(err, errors.ErrInvalidAction)
	_, err = index.Search(context.Background(), SearchQuery{UserID: "alice"})
	req.ErrorIs(err, errors.ErrInvalidAction)
}
