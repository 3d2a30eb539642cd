package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/user"
)

type userRepo struct {
	st *state
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrDuplicateEmail
		}
	}
	r.st.users[u.ID] = u.Clone()
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) Update(_ context.Context, u *user.User) error {
	if _, ok := r.st.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.st.users[u.ID] = u.Clone()
	return nil
}

func (r *userRepo) UpdateRole(_ context.Context, id uuid.UUID, role user.Role) error {
	u, ok := r.st.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	return nil
}
