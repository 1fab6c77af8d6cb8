// Package rest exposes the chat history and the health endpoint over HTTP with gin.
package rest

import (
	"net/http"
	"strconv"
	"strings"

	"social-chat/auth"
	"social-chat/domain/chat"
	"social-chat/errors"
	"social-chat/services"

	"github.com/gin-gonic/gin"
)

// ChatServer translates HTTP requests into chat service calls.
type ChatServer struct {
	chatService services.IChatService
}

func NewChatServer(chatService services.IChatService) *ChatServer {
	return &ChatServer{chatService: chatService}
}

func (s *ChatServer) AllChats(c *gin.Context) {
	s.listMessages(c, func(services.Viewer) chat.MessageFilter { return chat.AllMessages() })
}

func (s *ChatServer) MyChats(c *gin.Context) {
	s.listMessages(c, func(v services.Viewer) chat.MessageFilter { return chat.MessagesOfUser(v.ID) })
}

func (s *ChatServer) ChatsWith(c *gin.Context) {
	receiver := chat.UserID(strings.TrimSpace(c.Param("receiverId")))
	s.listMessages(c, func(v services.Viewer) chat.MessageFilter { return chat.MessagesBetween(v.ID, receiver) })
}

func (s *ChatServer) GroupChats(c *gin.Context) {
	group := chat.GroupID(strings.TrimSpace(c.Param("groupId")))
	s.listMessages(c, func(services.Viewer) chat.MessageFilter { return chat.MessagesInGroup(group) })
}

func (s *ChatServer) listMessages(c *gin.Context, filter func(services.Viewer) chat.MessageFilter) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		fail(c, err)
		return
	}
	query := services.HistoryQuery{Filter: filter(viewer), Limit: limit}
	if cursor := c.Query("cursor"); cursor != "" {
		query.Cursor = &cursor
	}

	page, err := s.chatService.ListMessages(viewer, query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *ChatServer) SearchChats(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		fail(c, err)
		return
	}
	views, err := s.chatService.SearchMessages(c.Request.Context(), viewer, services.SearchRequest{
		Text:    c.Query("q"),
		GroupID: chat.GroupID(c.Query("groupId")),
		Limit:   limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

func (s *ChatServer) AllGroups(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	groups, err := s.chatService.ListGroups(viewer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *ChatServer) MyGroups(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	groups, err := s.chatService.MyGroups(viewer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *ChatServer) Group(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	group, err := s.chatService.GetGroup(viewer, chat.GroupID(strings.TrimSpace(c.Param("groupId"))))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *ChatServer) UpdateProfile(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}
	var update services.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		fail(c, errors.ErrInvalidMessage)
		return
	}
	summary, err := s.chatService.UpdateProfile(viewer, update)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func viewerOf(c *gin.Context) (services.Viewer, bool) {
	userID, ok := auth.UserID(c)
	if !ok {
		fail(c, errors.ErrMissingToken)
		return services.Viewer{}, false
	}
	return services.Viewer{ID: userID, Roles: auth.Roles(c)}, true
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.ErrInvalidAction
	}
	return value, nil
}

// fail writes the structured error body shared by every endpoint.
func fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Storage details stay in the logs
		_ = c.Error(err)
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"status": status, "error": message})
}
