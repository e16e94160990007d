package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"collection-service/internal/auth"
	"collection-service/internal/model"
)

type AuthService struct {
	users  UserStore
	issuer *auth.Issuer
	hasher *auth.PasswordHasher
}

func NewAuthService(users UserStore, issuer *auth.Issuer, hasher *auth.PasswordHasher) *AuthService {
	return &AuthService{users: users, issuer: issuer, hasher: hasher}
}

type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a resident account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrDuplicate)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName:     name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         model.UserRoleResident,
		Status:       model.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.login(ctx, email, password, false)
}

// AdminLogin is Login restricted to ADMIN accounts.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.login(ctx, email, password, true)
}

func (s *AuthService) login(ctx context.Context, email, password string, adminOnly bool) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status == model.UserStatusSuspended {
		return nil, fmt.Errorf("%w: account suspended", ErrPermissionDenied)
	}
	if adminOnly && user.Role != model.UserRoleAdmin {
		return nil, fmt.Errorf("%w: admin access required", ErrPermissionDenied)
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
