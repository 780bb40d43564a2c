package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// ErrConversationNotFound is returned when the conversation does not
// exist or the caller is not a participant.
var ErrConversationNotFound = errors.New("conversation not found")

// Repository persists conversations and messages.
type Repository interface {
	// FindConversation looks up the conversation for a participant pair,
	// ignoring order.
	FindConversation(ctx context.Context, userA, userB string) (Conversation, bool, error)
	CreateConversation(ctx context.Context, conv Conversation) error
	GetConversation(ctx context.Context, id string) (Conversation, bool, error)
	ListConversations(ctx context.Context, userID string) ([]Conversation, error)
	TouchConversation(ctx context.Context, id, lastMessage string, at time.Time) error

	CreateMessage(ctx context.Context, msg Message) error
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
}

// Service exposes direct messaging between users.
type Service interface {
	SendMessage(ctx context.Context, senderID, recipientID, text string) (Message, error)
	ListConversations(ctx context.Context, userID string) ([]Conversation, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]Message, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the chat service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// SendMessage delivers text to the recipient, creating the conversation
// on first contact.
func (s *service) SendMessage(ctx context.Context, senderID, recipientID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, apperrors.Wrap("invalid_input", "message text is required", nil)
	}
	if recipientID == "" || recipientID == senderID {
		return Message{}, apperrors.Wrap("invalid_input", "a recipient other than yourself is required", nil)
	}

	now := s.now().UTC()
	conv, ok, err := s.repo.FindConversation(ctx, senderID, recipientID)
	if err != nil {
		return Message{}, apperrors.Wrap("storage_error", "failed to look up conversation", err)
	}
	if !ok {
		participants := []string{senderID, recipientID}
		sort.Strings(participants)
		conv = Conversation{
			ID:           uuid.NewString(),
			Participants: participants,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			return Message{}, apperrors.Wrap("storage_error", "failed to create conversation", err)
		}
	}

	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      now,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return Message{}, apperrors.Wrap("storage_error", "failed to store message", err)
	}
	if err := s.repo.TouchConversation(ctx, conv.ID, text, now); err != nil {
		return Message{}, apperrors.Wrap("storage_error", "failed to update conversation", err)
	}
	return msg, nil
}

func (s *service) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

func (s *service) ListMessages(ctx context.Context, userID, conversationID string) ([]Message, error) {
	conv, ok, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load conversation", err)
	}
	if !ok || !isParticipant(conv, userID) {
		return nil, ErrConversationNotFound
	}
	return s.repo.ListMessages(ctx, conversationID)
}

func isParticipant(conv Conversation, userID string) bool {
	for _, p := range conv.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
