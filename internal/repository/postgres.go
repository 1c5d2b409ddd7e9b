package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/deppfellow/app-functions/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository stores profiles in the users table.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

const selectProfile = `SELECT id, uid, email, name, image, role FROM users`

func (r *PostgresProfileRepository) findOne(ctx context.Context, where string, arg string) (model.UserProfile, error) {
	var p model.UserProfile
	err := r.pool.QueryRow(ctx, selectProfile+" WHERE "+where+" = $1 LIMIT 1", arg).
		Scan(&p.Key, &p.UID, &p.Email, &p.Name, &p.Image, &p.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("select profile by %s: %w", where, err)
	}
	return p, nil
}

func (r *PostgresProfileRepository) FindByUID(ctx context.Context, uid string) (model.UserProfile, error) {
	if uid == "" {
		return model.UserProfile{}, ErrProfileNotFound
	}
	return r.findOne(ctx, "uid", uid)
}

func (r *PostgresProfileRepository) FindByEmail(ctx context.Context, email string) (model.UserProfile, error) {
	if email == "" {
		return model.UserProfile{}, ErrProfileNotFound
	}
	return r.findOne(ctx, "email", email)
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p model.UserProfile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, uid, email, name, image, role) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.Key, p.UID, p.Email, p.Name, p.Image, p.Role,
	)
	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return fmt.Errorf("insert profile %s: %w", p.Key, ErrDuplicateProfile)
	}
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", p.Key, err)
	}
	return nil
}

func (r *PostgresProfileRepository) SetUID(ctx context.Context, key, uid string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET uid = $2, updated_at = NOW() WHERE id = $1`, key, uid)
	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return fmt.Errorf("set uid on profile %s: %w", key, ErrDuplicateProfile)
	}
	if err != nil {
		return fmt.Errorf("set uid on profile %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UpdateFields writes name and image in one statement; COALESCE keeps the
// stored value for a nil field.
func (r *PostgresProfileRepository) UpdateFields(ctx context.Context, key string, update model.ProfileUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = COALESCE($2, name), image = COALESCE($3, image), updated_at = NOW() WHERE id = $1`,
		key, update.Name, update.Image,
	)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
