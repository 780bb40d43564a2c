package chatrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agriconnect/agriconnect/internal/domain/chat"
)

// MemoryRepository is an in-memory chat store for tests and dev.
type MemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]chat.Conversation
	messages      map[string][]chat.Message
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string][]chat.Message),
	}
}

func (r *MemoryRepository) FindConversation(_ context.Context, userA, userB string) (chat.Conversation, bool, error) {
	pair := []string{userA, userB}
	sort.Strings(pair)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, conv := range r.conversations {
		if len(conv.Participants) == 2 && conv.Participants[0] == pair[0] && conv.Participants[1] == pair[1] {
			return conv, true, nil
		}
	}
	return chat.Conversation{}, false, nil
}

func (r *MemoryRepository) CreateConversation(_ context.Context, conv chat.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conv.ID] = conv
	return nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, id string) (chat.Conversation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conversations[id]
	return conv, ok, nil
}

func (r *MemoryRepository) ListConversations(_ context.Context, userID string) ([]chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.Conversation
	for _, conv := range r.conversations {
		for _, p := range conv.Participants {
			if p == userID {
				out = append(out, conv)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepository) TouchConversation(_ context.Context, id, lastMessage string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok {
		return chat.ErrConversationNotFound
	}
	conv.LastMessage = lastMessage
	conv.UpdatedAt = at
	r.conversations[id] = conv
	return nil
}

func (r *MemoryRepository) CreateMessage(_ context.Context, msg chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], msg)
	return nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, conversationID string) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chat.Message, len(r.messages[conversationID]))
	copy(out, r.messages[conversationID])
	return out, nil
}

var _ chat.Repository = (*MemoryRepository)(nil)
