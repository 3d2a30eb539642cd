package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the account's role in the marketplace
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleRider      Role = "RIDER"
	RoleDriver     Role = "DRIVER"
)

// ActiveState is the account's activation state
type ActiveState string

const (
	ActiveStateActive    ActiveState = "ACTIVE"
	ActiveStateBlocked   ActiveState = "BLOCKED"
	ActiveStateSuspended ActiveState = "SUSPENDED"
)

// AuthProvider names a credential source for the account
type AuthProvider struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
}

// User is an account record
type User struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	Address     string         `json:"address,omitempty"`
	Role        Role           `json:"role"`
	ActiveState ActiveState    `json:"active_state"`
	IsVerified  bool           `json:"is_verified"`
	Auths       []AuthProvider `json:"auths"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository defines the interface for user data access
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	// UpdateRole changes only the role column
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
}

// IsValid validates the role
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleRider, RoleDriver:
		return true
	}
	return false
}

// IsAdmin reports whether the role may review applications and manage accounts
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsValid validates the activation state
func (s ActiveState) IsValid() bool {
	switch s {
	case ActiveStateActive, ActiveStateBlocked, ActiveStateSuspended:
		return true
	}
	return false
}

// IsRestricted reports whether the account may not request, drive or apply
func (s ActiveState) IsRestricted() bool {
	return s == ActiveStateBlocked || s == ActiveStateSuspended
}

// HasAddress reports whether an address is on file
func (u *User) HasAddress() bool {
	return strings.TrimSpace(u.Address) != ""
}

// Clone returns a deep copy
func (u *User) Clone() *User {
	c := *u
	c.Auths = append([]AuthProvider(nil), u.Auths...)
	return &c
}
