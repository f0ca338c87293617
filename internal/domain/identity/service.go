package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/labsuite/labsuite/internal/platform/auth"
	"github.com/labsuite/labsuite/internal/platform/db"
)

// CreateRequest is the payload for registering a user.
type CreateRequest struct {
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Password     string     `json:"password"`
	Role         string     `json:"role"`
	Avatar       *string    `json:"avatar"`
	Phone        *string    `json:"phone"`
	LaboratoryID *uuid.UUID `json:"laboratoryId"`
}

// LoginRequest carries the credentials for token issuance.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token with its subject.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type Service struct {
	users Repository
	jwt   auth.JWTConfig
}

func NewService(users Repository, jwt auth.JWTConfig) *Service {
	return &Service{users: users, jwt: jwt}
}

const minPasswordLen = 8

func validRole(role string) bool {
	switch role {
	case auth.RoleUser, auth.RoleLabAdmin, auth.RoleAdmin:
		return true
	}
	return false
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return nil, errInvalid("email is required")
	}
	if req.Name == "" {
		return nil, errInvalid("name is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, errInvalid("password must be at least %d characters", minPasswordLen)
	}
	if req.Role == "" {
		req.Role = auth.RoleUser
	}
	if !validRole(req.Role) {
		return nil, errInvalid("invalid role %q", req.Role)
	}
	if req.Role != auth.RoleAdmin && req.LaboratoryID == nil {
		return nil, errInvalid("laboratoryId is required for non-admin users")
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, errInvalid("ya existe un usuario con el email %q", req.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
		Avatar:       req.Avatar,
		Phone:        req.Phone,
		LaboratoryID: req.LaboratoryID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q string, laboratoryID *uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, q, laboratoryID, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if email == "" {
			return nil, errInvalid("email is required")
		}
		if email != u.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, errInvalid("ya existe un usuario con el email %q", email)
			} else if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
		u.Email = email
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errInvalid("name is required")
		}
		u.Name = *patch.Name
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLen {
			return nil, errInvalid("password must be at least %d characters", minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if patch.Role != nil {
		if !validRole(*patch.Role) {
			return nil, errInvalid("invalid role %q", *patch.Role)
		}
		u.Role = *patch.Role
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	if patch.Avatar != nil {
		u.Avatar = patch.Avatar
	}
	if patch.Phone != nil {
		u.Phone = patch.Phone
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

// Login verifies credentials and issues a signed token. The token carries the
// tenant the request resolved to, so subsequent calls stay pinned to the same
// laboratory schema.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	labID := ""
	if u.LaboratoryID != nil {
		labID = u.LaboratoryID.String()
	}
	token, err := s.jwt.Issue(u.ID.String(), u.Name, u.Role, labID, db.TenantFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResponse{Token: token, User: u}, nil
}

// IsNotFound reports whether err is the repository's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func errInvalid(format string, args ...interface{}) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err rejects caller input, as opposed to a
// storage failure.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
