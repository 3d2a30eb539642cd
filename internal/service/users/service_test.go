package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
	"github.com/gocomet/rideshare/internal/store/memory"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

func TestRegister(t *testing.T) {
	svc := NewService(memory.New(), logger.NewNop())

	u, err := svc.Register(context.Background(), RegisterInput{Name: " Karim ", Email: "Karim@Example.com", Phone: "0170"})
	require.NoError(t, err)

	assert.Equal(t, "Karim", u.Name)
	assert.Equal(t, "karim@example.com", u.Email)
	assert.Equal(t, user.RoleRider, u.Role)
	assert.Equal(t, user.ActiveStateActive, u.ActiveState)
	assert.False(t, u.IsVerified)
	require.Len(t, u.Auths, 1)
	assert.Equal(t, ProviderCredentials, u.Auths[0].Provider)
	assert.False(t, u.HasAddress())

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "KARIM@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(memory.New(), logger.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com"})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))

	_, err = svc.Register(context.Background(), RegisterInput{Name: "A", Email: "not-an-email"})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestUpdateProfile_AddsAddress(t *testing.T) {
	svc := NewService(memory.New(), logger.NewNop())
	u, err := svc.Register(context.Background(), RegisterInput{Name: "Karim", Email: "k@example.com"})
	require.NoError(t, err)

	address := "House 7, Road 3, Dhaka"
	updated, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Address: &address})
	require.NoError(t, err)
	assert.True(t, updated.HasAddress())
	assert.Equal(t, "Karim", updated.Name)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, address, got.Address)

	empty := " "
	_, err = svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Name: &empty})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))

	_, err = svc.UpdateProfile(context.Background(), uuid.New(), ProfileUpdate{Address: &address})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestSetActiveState(t *testing.T) {
	st := memory.New()
	svc := NewService(st, logger.NewNop())
	u, err := svc.Register(context.Background(), RegisterInput{Name: "Karim", Email: "k@example.com"})
	require.NoError(t, err)

	_, err = svc.SetActiveState(context.Background(), user.RoleRider, u.ID, "BLOCKED")
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	_, err = svc.SetActiveState(context.Background(), user.RoleAdmin, u.ID, "GONE")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))

	blocked, err := svc.SetActiveState(context.Background(), user.RoleAdmin, u.ID, "blocked")
	require.NoError(t, err)
	assert.Equal(t, user.ActiveStateBlocked, blocked.ActiveState)

	root := &user.User{ID: uuid.New(), Name: "root", Email: "root@example.com", Role: user.RoleSuperAdmin, ActiveState: user.ActiveStateActive}
	require.NoError(t, st.WithinTx(context.Background(), func(ctx context.Context, repos store.Repos) error {
		return repos.Users.Create(ctx, root)
	}))
	_, err = svc.SetActiveState(context.Background(), user.RoleSuperAdmin, root.ID, "SUSPENDED")
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}
