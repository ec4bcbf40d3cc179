package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, full_name, email, password_hash, phone_number, role, is_active, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.FullName, strings.ToLower(u.Email), u.PasswordHash, u.PhoneNumber, int16(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt)
	return mapErr("create user", err)
}

// Upsert inserts u or refreshes the row that already owns its email.
func (r *UserRepository) Upsert(ctx context.Context, u *entity.User) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ((lower(email))) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			password_hash = EXCLUDED.password_hash,
			phone_number = EXCLUDED.phone_number,
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, u.ID, u.FullName, strings.ToLower(u.Email), u.PasswordHash, u.PhoneNumber, int16(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt)
	return mapErr("upsert user", row.Scan(&u.ID, &u.CreatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	return u, mapErr("get user", err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	u, err := scanUser(row)
	return u, mapErr("get user by email", err)
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u    entity.User
		role int16
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.PhoneNumber, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.UserRole(role)
	return &u, nil
}
