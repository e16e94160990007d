package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/cache"
	"collection-service/internal/model"
	"collection-service/internal/repository"
)

const userStatsCacheKey = "stats:users"

type UserService struct {
	users UserStore
	stats *cache.StatsCache
}

func NewUserService(users UserStore, stats *cache.StatsCache) *UserService {
	return &UserService{users: users, stats: stats}
}

type ListUsersOptions struct {
	Roles    []model.UserRole
	Statuses []model.UserStatus
	Search   string
	Limit    int
	Offset   int
}

func (s *UserService) List(ctx context.Context, principal model.Principal, opts ListUsersOptions) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.users.List(ctx, repository.UserFilter{
		Roles:    opts.Roles,
		Statuses: opts.Statuses,
		Search:   opts.Search,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
}

func (s *UserService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.User, error) {
	if !principal.IsAdmin() && principal.UserID != id {
		return nil, ErrPermissionDenied
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, principal model.Principal, id uuid.UUID, fullName, phone string) (*model.User, error) {
	if !principal.IsAdmin() && principal.UserID != id {
		return nil, ErrPermissionDenied
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(ctx, id, fullName, strings.TrimSpace(phone)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateRole(ctx context.Context, principal model.Principal, id uuid.UUID, role model.UserRole) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if !model.ValidUserRole(role) {
		return fmt.Errorf("%w: unknown role", ErrInvalidInput)
	}
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, userStatsCacheKey)
	return nil
}

func (s *UserService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status model.UserStatus) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if !model.ValidUserStatus(status) {
		return fmt.Errorf("%w: unknown status", ErrInvalidInput)
	}
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, userStatsCacheKey)
	return nil
}

func (s *UserService) AdjustCreditPoints(ctx context.Context, principal model.Principal, id uuid.UUID, delta int) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	user, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.CreditPoints+delta < 0 {
		return nil, fmt.Errorf("%w: credit points cannot go negative", ErrInvalidInput)
	}
	if err := s.users.AdjustCreditPoints(ctx, id, delta); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if principal.UserID == id {
		return fmt.Errorf("%w: cannot delete own account", ErrInvalidInput)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	s.stats.Invalidate(ctx, userStatsCacheKey)
	return nil
}

func (s *UserService) Stats(ctx context.Context, principal model.Principal) (model.UserStats, error) {
	if !principal.IsAdmin() {
		return model.UserStats{}, ErrPermissionDenied
	}
	var stats model.UserStats
	if s.stats.Get(ctx, userStatsCacheKey, &stats) {
		return stats, nil
	}
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return model.UserStats{}, err
	}
	s.stats.Set(ctx, userStatsCacheKey, stats)
	return stats, nil
}

func (s *UserService) mustGet(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
