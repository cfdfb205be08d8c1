package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danuarta/identity-service/internal/domain/entity"
	"github.com/danuarta/identity-service/internal/domain/repository"
)

// UserRepository persists identities in Postgres. Email and mobile are stored
// as NULL when absent; partial unique indexes on each column make the store
// the arbiter of concurrent duplicate creates.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, mobile, password_hash, name, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, nullIfEmpty(u.Email), nullIfEmpty(u.Mobile), nullIfEmpty(u.PasswordHash), nullIfEmpty(u.Name), u.IsVerified)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (*entity.User, error) {
	return r.getBy(ctx, "mobile = $1", mobile)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var email, mobile, hash, name *string

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, mobile, password_hash, name, is_verified, created_at, updated_at
		FROM users
		WHERE `+where, arg)

	if err := row.Scan(&u.ID, &email, &mobile, &hash, &name, &u.IsVerified,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Email = deref(email)
	u.Mobile = deref(mobile)
	u.PasswordHash = deref(hash)
	u.Name = deref(name)

	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, mobile = $2, password_hash = $3, name = $4, is_verified = $5, updated_at = $6
		WHERE id = $7
	`, nullIfEmpty(u.Email), nullIfEmpty(u.Mobile), nullIfEmpty(u.PasswordHash), nullIfEmpty(u.Name), u.IsVerified, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
