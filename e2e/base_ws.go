// Package e2e drives a running server through real websocket connections.
package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"social-chat/auth"
	"social-chat/domain/chat"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type Frame struct {
	Event chat.Event      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type BaseWsSuite struct {
	suite.Suite
	Config    Config
	authority *auth.TokenAuthority
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ChatAddr == "" || s.Config.JwtSecret == "" {
		s.T().Skip("E2E_CHAT_ADDR and JWT_SECRET are required to run the scenarios")
	}
	s.authority = auth.NewTokenAuthority(s.Config.JwtSecret, s.Config.JwtIssuer, time.Hour)
}

// Client is one user connected to the server under test.
type Client struct {
	t      *testing.T
	name   chat.UserID
	conn   *websocket.Conn
	config Config
}

// Connect opens a websocket as userID, printing a colorized header for the step in logs.
func (s *BaseWsSuite) Connect(userID chat.UserID) *Client {
	t := s.T()
	header := fmt.Sprintf("  ====== %s connects ======", userID)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	token, err := s.authority.GenerateToken(userID, nil)
	s.Require().NoError(err)
	conn, _, err := websocket.DefaultDialer.Dial(s.Config.ChatAddr,
		http.Header{"Authorization": []string{"Bearer " + token}})
	s.Require().NoError(err, "Failed to connect to "+s.Config.ChatAddr)
	t.Cleanup(func() { _ = conn.Close() })
	return &Client{t: t, name: userID, conn: conn, config: s.Config}
}

func (c *Client) Send(action chat.Action) {
	data, err := json.Marshal(action)
	if err != nil {
		c.t.Fatal(err)
	}
	if err := c.conn.WriteJSON(Frame{Event: action.Event(), Data: data}); err != nil {
		c.t.Fatal(err)
	}
}

// Expect reads frames until one carries event, or fails after timeout.
func (c *Client) Expect(event chat.Event, timeout time.Duration) Frame {
	deadline := time.Now().Add(timeout)
	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			c.t.Fatal(err)
		}
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			c.t.Fatalf("%s never received %s: %v", c.name, event, err)
		}
		if c.config.DebugJSON {
			c.t.Logf("%s <- %s %s", c.name, f.Event, string(f.Data))
		}
		if f.Event == event {
			return f
		}
	}
}
