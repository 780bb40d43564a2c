package chatrepo

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriconnect/agriconnect/internal/domain/chat"
)

// PostgresRepository implements chat.Repository using pgx. A
// conversation stores its participant pair sorted so lookups are
// order-insensitive.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) FindConversation(ctx context.Context, userA, userB string) (chat.Conversation, bool, error) {
	first, second := userA, userB
	if second < first {
		first, second = second, first
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, participant_a, participant_b, last_message, updated_at, created_at
		FROM conversations
		WHERE participant_a = $1 AND participant_b = $2
	`, first, second)
	conv, err := scanConversation(row)
	if err == pgx.ErrNoRows {
		return chat.Conversation{}, false, nil
	}
	if err != nil {
		return chat.Conversation{}, false, err
	}
	return conv, true, nil
}

func (r *PostgresRepository) CreateConversation(ctx context.Context, conv chat.Conversation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, last_message, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, conv.ID, conv.Participants[0], conv.Participants[1], conv.LastMessage, conv.UpdatedAt, conv.CreatedAt)
	return err
}

func (r *PostgresRepository) GetConversation(ctx context.Context, id string) (chat.Conversation, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, participant_a, participant_b, last_message, updated_at, created_at
		FROM conversations
		WHERE id = $1
	`, id)
	conv, err := scanConversation(row)
	if err == pgx.ErrNoRows {
		return chat.Conversation{}, false, nil
	}
	if err != nil {
		return chat.Conversation{}, false, err
	}
	return conv, true, nil
}

func (r *PostgresRepository) ListConversations(ctx context.Context, userID string) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, participant_a, participant_b, last_message, updated_at, created_at
		FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []chat.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) TouchConversation(ctx context.Context, id, lastMessage string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conversations SET last_message = $2, updated_at = $3 WHERE id = $1
	`, id, lastMessage, at)
	return err
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, msg chat.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Text, msg.CreatedAt)
	return err
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, text, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (chat.Conversation, error) {
	var (
		conv chat.Conversation
		a, b string
	)
	if err := row.Scan(&conv.ID, &a, &b, &conv.LastMessage, &conv.UpdatedAt, &conv.CreatedAt); err != nil {
		return chat.Conversation{}, err
	}
	conv.Participants = []string{a, b}
	sort.Strings(conv.Participants)
	return conv, nil
}

var _ chat.Repository = (*PostgresRepository)(nil)
