package model

import "github.com/google/uuid"

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsCollector() bool {
	return p.Role == UserRoleCollector
}

func (p Principal) IsResident() bool {
	return p.Role == UserRoleResident
}
