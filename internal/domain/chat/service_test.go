package chat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/chat"
	"github.com/agriconnect/agriconnect/internal/infra/chatrepo"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

func TestSendMessageCreatesConversationOnFirstContact(t *testing.T) {
	svc := chat.NewService(chatrepo.NewMemoryRepository())

	msg, err := svc.SendMessage(context.Background(), "ramesh", "suresh", "Is the wheat still available?")
	require.NoError(t, err)
	require.NotEmpty(t, msg.ConversationID)
	require.Equal(t, "ramesh", msg.SenderID)

	// The reply lands in the same conversation.
	reply, err := svc.SendMessage(context.Background(), "suresh", "ramesh", "Yes, 50 quintals left.")
	require.NoError(t, err)
	require.Equal(t, msg.ConversationID, reply.ConversationID)

	convs, err := svc.ListConversations(context.Background(), "ramesh")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Equal(t, "Yes, 50 quintals left.", convs[0].LastMessage)
	require.ElementsMatch(t, []string{"ramesh", "suresh"}, convs[0].Participants)
}

func TestSendMessageValidation(t *testing.T) {
	svc := chat.NewService(chatrepo.NewMemoryRepository())

	_, err := svc.SendMessage(context.Background(), "ramesh", "suresh", "   ")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.SendMessage(context.Background(), "ramesh", "ramesh", "hello me")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.SendMessage(context.Background(), "ramesh", "", "hello")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestListMessagesRequiresParticipation(t *testing.T) {
	svc := chat.NewService(chatrepo.NewMemoryRepository())

	msg, err := svc.SendMessage(context.Background(), "ramesh", "suresh", "Price for onions?")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), "suresh", "ramesh", "Rs 1800 per quintal.")
	require.NoError(t, err)

	messages, err := svc.ListMessages(context.Background(), "suresh", msg.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "Price for onions?", messages[0].Text)

	_, err = svc.ListMessages(context.Background(), "stranger", msg.ConversationID)
	require.ErrorIs(t, err, chat.ErrConversationNotFound)

	_, err = svc.ListMessages(context.Background(), "ramesh", "missing")
	require.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestConversationsAreScopedToUser(t *testing.T) {
	svc := chat.NewService(chatrepo.NewMemoryRepository())

	_, err := svc.SendMessage(context.Background(), "ramesh", "suresh", "hello")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), "mahesh", "suresh", "namaste")
	require.NoError(t, err)

	convs, err := svc.ListConversations(context.Background(), "suresh")
	require.NoError(t, err)
	require.Len(t, convs, 2)

	convs, err = svc.ListConversations(context.Background(), "ramesh")
	require.NoError(t, err)
	require.Len(t, convs, 1)
}
