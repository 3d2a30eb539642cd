package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/user"
)

type userRepo struct {
	q queryer
}

const userColumns = `id, name, email, phone, address, role, active_state, is_verified, auths, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	auths, err := json.Marshal(u.Auths)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Name, u.Email, u.Phone, u.Address, string(u.Role), string(u.ActiveState),
		u.IsVerified, auths, u.CreatedAt, u.UpdatedAt,
	)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row)
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users
		SET name = $2, phone = $3, address = $4, role = $5, active_state = $6,
		    is_verified = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Name, u.Phone, u.Address, string(u.Role), string(u.ActiveState), u.IsVerified, u.UpdatedAt,
	)
	return affectedOne(res, mapError(err), user.ErrUserNotFound)
}

func (r *userRepo) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	res, err := r.q.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	return affectedOne(res, mapError(err), user.ErrUserNotFound)
}

func scanUser(row *sql.Row) (*user.User, error) {
	var (
		u     user.User
		role  string
		state string
		auths []byte
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &role, &state,
		&u.IsVerified, &auths, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	u.Role = user.Role(role)
	u.ActiveState = user.ActiveState(state)
	if err := json.Unmarshal(auths, &u.Auths); err != nil {
		return nil, err
	}
	return &u, nil
}

// affectedOne maps a zero-row UPDATE to notFound
func affectedOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
