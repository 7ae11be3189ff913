package repository

import (
	"context"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// SearchRepository implements the combined hybrid search over messages and
// documentation. Scoring happens in SQL: cosine similarity blended with an
// exponential recency decay (30-day e-folding time), ordered by the combined
// score descending.
type SearchRepository struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool}
}

const combinedSearchQuery = `
	WITH hits AS (
		SELECT m.id, m.content, 'message' AS source_type,
		       m.channel_id, c.name AS channel_name,
		       m.user_id, p.username, m.created_at,
		       1 - (m.embedding <=> $1) AS similarity,
		       EXP(-EXTRACT(EPOCH FROM (now() - m.created_at)) / 2592000.0) AS recency_score
		FROM messages m
		JOIN profiles p ON p.id = m.user_id
		LEFT JOIN channels c ON c.id = m.channel_id
		WHERE m.embedding IS NOT NULL
		UNION ALL
		SELECT d.id, d.answer AS content, 'documentation' AS source_type,
		       NULL::uuid AS channel_id, 'Documentation' AS channel_name,
		       NULL::uuid AS user_id, 'Documentation' AS username, d.created_at,
		       1 - (d.embedding <=> $1) AS similarity,
		       EXP(-EXTRACT(EPOCH FROM (now() - d.created_at)) / 2592000.0) AS recency_score
		FROM documentation d
		WHERE d.embedding IS NOT NULL
	)
	SELECT id, content, source_type, channel_id, channel_name, user_id, username, created_at,
	       similarity, recency_score,
	       similarity * (1 - $2::float8) + recency_score * $2::float8 AS combined_score
	FROM hits
	WHERE similarity >= $3
	ORDER BY combined_score DESC
	LIMIT $4`

func (r *SearchRepository) CombinedSearch(ctx context.Context, embedding []float32, threshold, recencyWeight float64, limit int) ([]*domain.KnowledgeHit, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := r.pool.Query(ctx, combinedSearchQuery,
		pgvector.NewVector(embedding), recencyWeight, threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []*domain.KnowledgeHit
	for rows.Next() {
		var hit domain.KnowledgeHit
		var sourceType string
		var channelID, channelName, userID *string
		var similarity, recency, combined float64
		if err := rows.Scan(
			&hit.ID, &hit.Content, &sourceType,
			&channelID, &channelName, &userID, &hit.Username, &hit.CreatedAt,
			&similarity, &recency, &combined,
		); err != nil {
			return nil, err
		}
		hit.SourceKind = domain.SourceKind(sourceType)
		if channelID != nil {
			hit.ChannelID = *channelID
		}
		if channelName != nil {
			hit.ChannelName = *channelName
		}
		if userID != nil {
			hit.UserID = *userID
		}
		hit.Similarity = float32(similarity)
		hit.RecencyScore = float32(recency)
		hit.CombinedScore = float32(combined)
		hits = append(hits, &hit)
	}

	return hits, rows.Err()
}
