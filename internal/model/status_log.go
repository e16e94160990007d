package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RouteStatusLog struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	RouteID   uuid.UUID    `gorm:"type:uuid;not null" json:"route_id"`
	OldStatus *RouteStatus `gorm:"type:route_status" json:"old_status"`
	NewStatus RouteStatus  `gorm:"type:route_status;not null" json:"new_status"`
	Note      string       `gorm:"type:text" json:"note"`
	ChangedBy *uuid.UUID   `gorm:"type:uuid" json:"changed_by"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (RouteStatusLog) TableName() string {
	return "route_status_log"
}

func (l *RouteStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
