package ws_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social-chat/auth"
	"social-chat/domain/chat"
	"social-chat/infrastructure/ws"
	"social-chat/projection"
	"social-chat/repositories"
	"social-chat/runtime"
	"social-chat/runtime/workers"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Event chat.Event      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type server struct {
	url       string
	authority *auth.TokenAuthority
	registry  *runtime.Registry
	groups    *repositories.GroupRepository
}

func newServer(t *testing.T, config ws.Config) *server {
	t.Helper()
	log := slog.Default()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := runtime.NewRegistry(time.Second, log)
	groups := repositories.NewGroupRepository(db, log)
	users := repositories.NewUserRepository(db)
	populator := projection.NewPopulator(users, groups, chat.ChatProjection, log)
	membership := runtime.NewMembership(registry, groups, populator, log)
	engine := runtime.NewEngine(registry, repositories.NewMessageRepository(db, log), groups, nil, populator,
		nil, membership, runtime.EngineConfig{ReplyErrors: true}, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = workers.NewActionWorker(engine.Actions(), engine, log).Run(ctx) }()

	authority := auth.NewTokenAuthority("secret", "", time.Hour)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", auth.Middleware(authority), ws.NewHandler(registry, engine, membership, config, log).Serve)

	httpServer := httptest.NewServer(router)
	t.Cleanup(httpServer.Close)

	return &server{
		url:       "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws",
		authority: authority,
		registry:  registry,
		groups:    groups,
	}
}

func (s *server) dial(t *testing.T, userID chat.UserID) *websocket.Conn {
	t.Helper()
	token, err := s.authority.GenerateToken(userID, nil)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(s.url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func send(t *testing.T, conn *websocket.Conn, event chat.Event, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(frame{Event: event, Data: raw}))
}

func TestHandler_Rejects_Missing_Token(t *testing.T) {
	req := require.New(t)
	s := newServer(t, ws.DefaultConfig())

	_, resp, err := websocket.DefaultDialer.Dial(s.url, nil)

	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Rejects_Disallowed_Origin(t *testing.T) {
	req := require.New(t)
	config := ws.DefaultConfig()
	config.AllowedOrigins = []string{"https://chat.example.com"}
	s := newServer(t, config)
	token, err := s.authority.GenerateToken("alice", nil)
	req.NoError(err)

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(s.url+"?token="+token, header)

	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusForbidden, resp.StatusCode)
	req.Zero(s.registry.Connections())
}

func TestHandler_Delivers_Individual_Message(t *testing.T) {
	req := require.New(t)
	s := newServer(t, ws.DefaultConfig())

	alice := s.dial(t, "alice")
	bob := s.dial(t, "bob")
	req.Eventually(func() bool {
		return s.registry.IsOnline("alice") && s.registry.IsOnline("bob")
	}, time.Second, 5*time.Millisecond)

	// When alice writes to bob
	send(t, alice, chat.EventIndividual, chat.IndividualMessageCommand{ReceiverID: "bob", Message: "hi bob"})

	// Then both ends receive the populated message
	for _, conn := range []*websocket.Conn{bob, alice} {
		f := read(t, conn)
		req.Equal(chat.EventIndividual, f.Event)
		var view chat.MessageView
		req.NoError(json.Unmarshal(f.Data, &view))
		req.Equal("hi bob", view.Message)
		req.Equal(chat.UserID("alice"), view.Sender.ID)
		req.Equal(chat.UserID("bob"), view.Receiver.ID)
	}
}

func TestHandler_Replies_To_Invalid_Frames(t *testing.T) {
	req := require.New(t)
	s := newServer(t, ws.DefaultConfig())
	alice := s.dial(t, "alice")

	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("not json")))

	f := read(t, alice)
	req.Equal(chat.EventError, f.Event)
	var reply chat.ActionError
	req.NoError(json.Unmarshal(f.Data, &reply))
	req.Equal("validation", reply.Kind)
}

func TestHandler_Rate_Limits_Frames(t *testing.T) {
	req := require.New(t)
	config := ws.DefaultConfig()
	config.RateBurst = 1
	config.RateInterval = time.Hour
	s := newServer(t, config)
	alice := s.dial(t, "alice")

	// Given a single token, the second frame is refused
	send(t, alice, chat.EventIndividual, chat.IndividualMessageCommand{ReceiverID: "alice", Message: "one"})
	send(t, alice, chat.EventIndividual, chat.IndividualMessageCommand{ReceiverID: "alice", Message: "two"})

	events := []chat.Event{read(t, alice).Event, read(t, alice).Event}
	req.ElementsMatch([]chat.Event{chat.EventIndividual, chat.EventError}, events)
}

func TestHandler_Restores_Group_Subscriptions(t *testing.T) {
	req := require.New(t)
	s := newServer(t, ws.DefaultConfig())
	req.NoError(s.groups.CreateGroup(chat.NewGroup("g1", "team", []chat.UserID{"alice", "bob"}, time.Now())))

	alice := s.dial(t, "alice")
	req.Eventually(func() bool {
		return s.registry.Subscribers(chat.GroupChannel("g1")) == 1
	}, time.Second, 5*time.Millisecond)

	// When something is announced on the group she joined before connecting
	delivered := s.registry.Publish(context.Background(), chat.GroupChannel("g1"),
		chat.Notification{Event: chat.EventGroupCreated, Payload: chat.GroupView{ID: "g1"}})

	// Then her new connection gets it
	req.Equal(1, delivered)
	req.Equal(chat.EventGroupCreated, read(t, alice).Event)
}

func TestHandler_Unbinds_On_Close(t *testing.T) {
	req := require.New(t)
	s := newServer(t, ws.DefaultConfig())
	alice := s.dial(t, "alice")
	req.Eventually(func() bool { return s.registry.Connections() == 1 }, time.Second, 5*time.Millisecond)

	req.NoError(alice.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	_ = alice.Close()

	req.Eventually(func() bool { return s.registry.Connections() == 0 }, time.Second, 5*time.Millisecond)
	req.False(s.registry.IsOnline("alice"))
}
