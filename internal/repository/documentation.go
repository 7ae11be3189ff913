package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/pagination"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type DocumentationRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentationRepository(pool *pgxpool.Pool) *DocumentationRepository {
	return &DocumentationRepository{pool: pool}
}

func (r *DocumentationRepository) Create(ctx context.Context, d *domain.DocumentationEntry) error {
	sources, err := json.Marshal(d.SourceMessages)
	if err != nil {
		return err
	}

	var embedding *pgvector.Vector
	if len(d.Embedding) > 0 {
		vec := pgvector.NewVector(d.Embedding)
		embedding = &vec
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO documentation (id, question, answer, source_messages, embedding, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Question, d.Answer, sources, embedding, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentationRepository) GetByID(ctx context.Context, id string) (*domain.DocumentationEntry, error) {
	var d domain.DocumentationEntry
	var sources []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, question, answer, source_messages, created_at, updated_at
		 FROM documentation WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Question, &d.Answer, &sources, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentationNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(sources, &d.SourceMessages); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentationRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentationPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, question, answer, source_messages, created_at, updated_at
			 FROM documentation
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, question, answer, source_messages, created_at, updated_at
			 FROM documentation
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.DocumentationEntry
	for rows.Next() {
		var d domain.DocumentationEntry
		var sources []byte
		if err := rows.Scan(&d.ID, &d.Question, &d.Answer, &sources, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sources, &d.SourceMessages); err != nil {
			return nil, err
		}
		entries = append(entries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.DocumentationPageResult{
		Items:      entries,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
