package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRoleCollector UserRole = "COLLECTOR"
	UserRoleResident  UserRole = "USER"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusPending   UserStatus = "PENDING"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone        string     `gorm:"type:varchar(32)" json:"phone"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole   `gorm:"type:user_role;not null;default:'USER'" json:"role"`
	Status       UserStatus `gorm:"type:user_status;not null;default:'ACTIVE'" json:"status"`
	CreditPoints int        `gorm:"not null;default:0" json:"credit_points"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func ValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleAdmin, UserRoleCollector, UserRoleResident:
		return true
	}
	return false
}

func ValidUserStatus(s UserStatus) bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusPending:
		return true
	}
	return false
}
