package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, conversation_id, sender_id, content, is_read, created_at`

func scanMessage(row pgx.Row) (models.ChatMessage, error) {
	var message models.ChatMessage
	err := row.Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.Content,
		&message.IsRead,
		&message.CreatedAt,
	)
	return message, err
}

func (r *MessageRepository) Create(
	ctx context.Context,
	conversationID int64,
	senderID int64,
	content string,
) (*models.ChatMessage, error) {
	message, err := scanMessage(r.db.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, is_read)
		VALUES ($1, $2, $3, FALSE)
		RETURNING `+messageColumns, conversationID, senderID, content))
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByConversation returns one page of messages, newest first, plus the
// conversation's total message count.
func (r *MessageRepository) ListByConversation(
	ctx context.Context,
	conversationID int64,
	limit int,
	offset int,
) ([]models.ChatMessage, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		return scanMessage(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// CountUnread counts messages addressed to readerID that are still unread,
// across all of the reader's conversations.
func (r *MessageRepository) CountUnread(ctx context.Context, readerID int64) (int, error) {
	var unread int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.user1_id = $1 OR c.user2_id = $1)
		  AND m.sender_id <> $1
		  AND m.is_read = FALSE
	`, readerID).Scan(&unread)
	return unread, err
}

func (r *MessageRepository) MarkMessagesRead(
	ctx context.Context,
	messageIDs []int64,
	readerID int64,
) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE id = ANY($1)
		  AND sender_id <> $2
		  AND is_read = FALSE
	`, messageIDs, readerID)
	return err
}
