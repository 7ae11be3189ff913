package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChannelRepository struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{pool: pool}
}

func (r *ChannelRepository) Create(ctx context.Context, c *domain.Channel) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channels (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, nullableString(c.Description), c.CreatedAt,
	)
	return err
}

func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	var c domain.Channel
	var description *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM channels WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}
	if description != nil {
		c.Description = *description
	}
	return &c, nil
}

func (r *ChannelRepository) GetByName(ctx context.Context, name string) (*domain.Channel, error) {
	var c domain.Channel
	var description *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM channels WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}
	if description != nil {
		c.Description = *description
	}
	return &c, nil
}

func (r *ChannelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM channels ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*domain.Channel
	for rows.Next() {
		var c domain.Channel
		var description *string
		if err := rows.Scan(&c.ID, &c.Name, &description, &c.CreatedAt); err != nil {
			return nil, err
		}
		if description != nil {
			c.Description = *description
		}
		channels = append(channels, &c)
	}
	return channels, rows.Err()
}
