package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/pagination"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type MessageRepository struct {
	db dbtx
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: pool}
}

func NewMessageRepositoryWithTx(tx pgx.Tx) *MessageRepository {
	return &MessageRepository{db: tx}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	var embedding *pgvector.Vector
	if len(m.Embedding) > 0 {
		vec := pgvector.NewVector(m.Embedding)
		embedding = &vec
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, channel_id, user_id, content, embedding, parent_id, reply_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, nullableString(m.ChannelID), m.UserID, m.Content, embedding, nullableString(m.ParentID), m.ReplyCount, m.CreatedAt,
	)
	return err
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	var channelID, parentID *string
	var embedding *pgvector.Vector
	err := r.db.QueryRow(ctx,
		`SELECT id, channel_id, user_id, content, embedding, parent_id, reply_count, created_at
		 FROM messages WHERE id = $1`,
		id,
	).Scan(&m.ID, &channelID, &m.UserID, &m.Content, &embedding, &parentID, &m.ReplyCount, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	if channelID != nil {
		m.ChannelID = *channelID
	}
	if parentID != nil {
		m.ParentID = *parentID
	}
	if embedding != nil {
		m.Embedding = embedding.Slice()
	}
	return &m, nil
}

func (r *MessageRepository) IncrementReplyCount(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE messages SET reply_count = reply_count + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE messages SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// ContextWindow returns the messages in a channel within the given radius
// around a timestamp, oldest first, with author usernames resolved.
func (r *MessageRepository) ContextWindow(ctx context.Context, channelID string, ts time.Time, window time.Duration) ([]domain.ContextMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.id, m.content, m.user_id, p.username, m.created_at
		 FROM messages m
		 JOIN profiles p ON p.id = m.user_id
		 WHERE m.channel_id = $1
		   AND m.created_at BETWEEN $2 AND $3
		 ORDER BY m.created_at ASC`,
		channelID, ts.Add(-window), ts.Add(window),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ContextMessage
	for rows.Next() {
		var m domain.ContextMessage
		if err := rows.Scan(&m.ID, &m.Content, &m.UserID, &m.Username, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) ListByChannelWithCursor(ctx context.Context, channelID string, cursor *pagination.Cursor, limit int) (*service.MessagePageResult, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, channel_id, user_id, content, parent_id, reply_count, created_at
			 FROM messages
			 WHERE channel_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			channelID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, channel_id, user_id, content, parent_id, reply_count, created_at
			 FROM messages
			 WHERE channel_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			channelID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		var chID, parentID *string
		if err := rows.Scan(&m.ID, &chID, &m.UserID, &m.Content, &parentID, &m.ReplyCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		if chID != nil {
			m.ChannelID = *chID
		}
		if parentID != nil {
			m.ParentID = *parentID
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	var nextCursor string
	if hasMore && len(messages) > 0 {
		last := messages[len(messages)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.MessagePageResult{
		Items:      messages,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
