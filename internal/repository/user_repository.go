package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type UserFilter struct {
	Roles    []model.UserRole
	Statuses []model.UserStatus
	Search   string
	Limit    int
	Offset   int
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := r.db.WithContext(ctx).Model(&model.User{})

	if len(filter.Roles) > 0 {
		query = query.Where("role IN ?", filter.Roles)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(full_name ILIKE ? OR email ILIKE ?)", search, search)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var users []model.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"full_name": fullName,
			"phone":     phone,
		}).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.UserRole) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *UserRepository) AdjustCreditPoints(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("credit_points", gorm.Expr("credit_points + ?", delta)).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Stats(ctx context.Context) (model.UserStats, error) {
	var stats model.UserStats

	type roleCount struct {
		Role  model.UserRole
		Count int64
	}
	var byRole []roleCount
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Find(&byRole).Error; err != nil {
		return stats, err
	}
	for _, rc := range byRole {
		switch rc.Role {
		case model.UserRoleAdmin:
			stats.Admins = rc.Count
		case model.UserRoleCollector:
			stats.Collectors = rc.Count
		case model.UserRoleResident:
			stats.Residents = rc.Count
		}
	}

	type statusCount struct {
		Status model.UserStatus
		Count  int64
	}
	var byStatus []statusCount
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&byStatus).Error; err != nil {
		return stats, err
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case model.UserStatusActive:
			stats.Active = sc.Count
		case model.UserStatusSuspended:
			stats.Suspended = sc.Count
		case model.UserStatusPending:
			stats.Pending = sc.Count
		}
	}

	return stats, nil
}
