//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"social-chat/auth"
	"social-chat/domain/chat"
	"social-chat/errors"
	"social-chat/projection"
	"social-chat/repositories"

	"github.com/go-playground/validator/v10"
)

// IChatService is the read path behind the REST API, plus the profile update
// that feeds the summaries attached to every message.
type IChatService interface {
	ListMessages(viewer Viewer, query HistoryQuery) (MessagePage, error)
	ListGroups(viewer Viewer) ([]chat.GroupView, error)
	MyGroups(viewer Viewer) ([]chat.GroupView, error)
	GetGroup(viewer Viewer, id chat.GroupID) (chat.GroupView, error)
	SearchMessages(ctx context.Context, viewer Viewer, request SearchRequest) ([]chat.MessageView, error)
	UpdateProfile(viewer Viewer, update ProfileUpdate) (chat.UserSummary, error)
}

// Viewer is the verified identity of the caller.
type Viewer struct {
	ID    chat.UserID
	Roles []string
}

func (v Viewer) IsAdmin() bool {
	return auth.HasRole(v.Roles, auth.RoleAdmin)
}

type HistoryQuery struct {
	Filter chat.MessageFilter
	Cursor *string
	Limit  int
}

type MessagePage struct {
	Messages   []chat.MessageView `json:"messages"`
	NextCursor *string            `json:"nextCursor,omitempty"`
}

type SearchRequest struct {
	Text    string       `json:"text" validate:"required,notblank,max=256"`
	GroupID chat.GroupID `json:"groupId"`
	Limit   int          `json:"limit" validate:"gte=0,lte=100"`
}

type ProfileUpdate struct {
	Username     string `json:"username" validate:"required,notblank,max=64"`
	Email        string `json:"email" validate:"omitempty,email"`
	FullName     string `json:"fullName" validate:"max=128"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
	CurrentTown  string `json:"currentTown" validate:"max=128"`
}

type ChatService struct {
	messages  repositories.IMessageRepository
	groups    repositories.IGroupRepository
	users     repositories.IUserRepository
	index     repositories.IMessageIndex
	populator *projection.Populator
	validate  *validator.Validate
	log       *slog.Logger
}

func NewChatService(
	messages repositories.IMessageRepository,
	groups repositories.IGroupRepository,
	users repositories.IUserRepository,
	index repositories.IMessageIndex,
	populator *projection.Populator,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		messages:  messages,
		groups:    groups,
		users:     users,
		index:     index,
		populator: populator,
		validate:  chat.NewValidator(),
		log:       log,
	}
}

// ListMessages returns one page of history, most recent first.
// An empty page is reported as errors.ErrNoMessages.
func (s *ChatService) ListMessages(viewer Viewer, query HistoryQuery) (MessagePage, error) {
	if err := s.authorizeHistory(viewer, query.Filter); err != nil {
		return MessagePage{}, err
	}

	messages, next, err := s.messages.ListRecent(query.Filter, query.Cursor, query.Limit)
	if err != nil {
		return MessagePage{}, err
	}
	if len(messages) == 0 {
		return MessagePage{}, errors.ErrNoMessages
	}
	return MessagePage{Messages: s.populator.Messages(messages), NextCursor: next}, nil
}

func (s *ChatService) authorizeHistory(viewer Viewer, filter chat.MessageFilter) error {
	switch filter.Kind {
	case chat.FilterAll:
		if !viewer.IsAdmin() {
			return fmt.Errorf("%w: listing every chat requires the %s role", errors.ErrForbidden, auth.RoleAdmin)
		}
	case chat.FilterUser:
		if filter.UserID != viewer.ID && !viewer.IsAdmin() {
			return errors.ErrForbidden
		}
	case chat.FilterBetween:
		if filter.UserID != viewer.ID && filter.OtherID != viewer.ID && !viewer.IsAdmin() {
			return errors.ErrForbidden
		}
	case chat.FilterGroup:
		return s.requireMember(viewer, filter.GroupID)
	default:
		return errors.ErrInvalidAction
	}
	return nil
}

// requireMember also reports unknown groups, admins included.
func (s *ChatService) requireMember(viewer Viewer, id chat.GroupID) error {
	_, err := s.memberGroup(viewer, id)
	return err
}

func (s *ChatService) memberGroup(viewer Viewer, id chat.GroupID) (chat.Group, error) {
	group, err := s.groups.GetGroup(id)
	if err != nil {
		return chat.Group{}, err
	}
	if !group.HasMember(viewer.ID) && !viewer.IsAdmin() {
		return chat.Group{}, fmt.Errorf("%w: %s", errors.ErrNotGroupMember, id)
	}
	return group, nil
}

// ListGroups returns every group and is reserved to admins.
func (s *ChatService) ListGroups(viewer Viewer) ([]chat.GroupView, error) {
	if !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: listing every group requires the %s role", errors.ErrForbidden, auth.RoleAdmin)
	}
	groups, err := s.groups.ListGroups()
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errors.ErrNoGroups
	}
	return s.populator.Groups(groups), nil
}

func (s *ChatService) MyGroups(viewer Viewer) ([]chat.GroupView, error) {
	groups, err := s.groups.ListGroupsByMember(viewer.ID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errors.ErrNoGroups
	}
	return s.populator.Groups(groups), nil
}

func (s *ChatService) GetGroup(viewer Viewer, id chat.GroupID) (chat.GroupView, error) {
	group, err := s.memberGroup(viewer, id)
	if err != nil {
		return chat.GroupView{}, err
	}
	return s.populator.Group(group), nil
}

// SearchMessages runs a full-text search over the viewer's conversations,
// or over one group the viewer belongs to.
func (s *ChatService) SearchMessages(ctx context.Context, viewer Viewer, request SearchRequest) ([]chat.MessageView, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, err
	}

	query := repositories.SearchQuery{Text: strings.TrimSpace(request.Text), Limit: request.Limit}
	if request.GroupID != "" {
		if err := s.requireMember(viewer, request.GroupID); err != nil {
			return nil, err
		}
		query.GroupID = request.GroupID
	} else {
		query.UserID = viewer.ID
	}

	ids, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errors.ErrNoMessages
	}
	s.log.Debug("Search done", "viewer", viewer.ID, "hits", len(ids), "resolved", len(messages))
	return s.populator.Messages(messages), nil
}

// UpdateProfile stores the public fields of the viewer's profile.
func (s *ChatService) UpdateProfile(viewer Viewer, update ProfileUpdate) (chat.UserSummary, error) {
	if err := s.validate.Struct(update); err != nil {
		return chat.UserSummary{}, err
	}
	user := chat.User{
		ID:           viewer.ID,
		Username:     strings.TrimSpace(update.Username),
		Email:        update.Email,
		FullName:     update.FullName,
		ProfileImage: update.ProfileImage,
		CurrentTown:  update.CurrentTown,
	}
	if err := s.users.UpsertUser(user); err != nil {
		return chat.UserSummary{}, err
	}
	return user.Summary(chat.ChatProjection), nil
}
