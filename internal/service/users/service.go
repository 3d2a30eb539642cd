// Package users manages account records.
package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/rideshare/internal/domain/user"
	"github.com/gocomet/rideshare/internal/store"
	apperrors "github.com/gocomet/rideshare/pkg/errors"
	"github.com/gocomet/rideshare/pkg/logger"
)

// ProviderCredentials names the email/password auth provider
const ProviderCredentials = "credentials"

// Service handles user accounts
type Service struct {
	store  store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new user service
func NewService(st store.Store, log *logger.Logger) *Service {
	return &Service{store: st, logger: log, now: time.Now}
}

// RegisterInput is a new account
type RegisterInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Register creates an active rider account
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, apperrors.InvalidInput("Name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidInput("A valid email is required", err)
	}

	var created *user.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		_, err := repos.Users.GetByEmail(ctx, email)
		if err == nil {
			return apperrors.Conflict("User already exists", nil)
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return err
		}

		now := s.now()
		u := &user.User{
			ID:          uuid.New(),
			Name:        name,
			Email:       email,
			Phone:       strings.TrimSpace(in.Phone),
			Address:     strings.TrimSpace(in.Address),
			Role:        user.RoleRider,
			ActiveState: user.ActiveStateActive,
			Auths:       []user.AuthProvider{{Provider: ProviderCredentials, ProviderID: email}},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("User registered", logger.Stringer("user_id", created.ID))
	return created, nil
}

// GetProfile returns the user's own record
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var found *user.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		var err error
		found, err = repos.Users.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return found, nil
}

// ProfileUpdate holds the optional contact fields a user may change
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
}

// UpdateProfile merges the provided contact fields
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*user.User, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.InvalidInput("Name must not be empty", nil)
	}

	var updated *user.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		u, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Phone != nil {
			u.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Address != nil {
			u.Address = strings.TrimSpace(*in.Address)
		}
		u.UpdatedAt = s.now()
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// SetActiveState blocks, suspends or reactivates an account
func (s *Service) SetActiveState(ctx context.Context, actorRole user.Role, userID uuid.UUID, state string) (*user.User, error) {
	if !actorRole.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can change account state", nil)
	}
	next := user.ActiveState(strings.ToUpper(strings.TrimSpace(state)))
	if !next.IsValid() {
		return nil, apperrors.InvalidInputf("Invalid active state '%s'", state)
	}

	var updated *user.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos store.Repos) error {
		u, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.Role == user.RoleSuperAdmin {
			return apperrors.Forbidden("Super admin accounts cannot be blocked", nil)
		}
		u.ActiveState = next
		u.UpdatedAt = s.now()
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("User active state changed",
		logger.Stringer("user_id", updated.ID),
		logger.String("active_state", string(updated.ActiveState)),
	)
	return updated, nil
}

func translate(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return apperrors.NotFound("User not found", err)
	case errors.Is(err, user.ErrDuplicateEmail):
		return apperrors.Conflict("User already exists", err)
	case errors.Is(err, store.ErrConcurrentUpdate):
		return apperrors.Conflict("The account was changed by another request, please retry", err)
	}
	return apperrors.Internal("Failed to process user request", err)
}
