package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, username, created_at) VALUES ($1, $2, $3)`,
		p.ID, p.Username, p.CreatedAt,
	)
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, created_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Username, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, created_at FROM profiles WHERE username = $1`,
		username,
	).Scan(&p.ID, &p.Username, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, created_at FROM profiles ORDER BY username ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}
