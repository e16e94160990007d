package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistItem is one acknowledged entry of the pre-route safety checklist.
type ChecklistItem struct {
	ItemID  string `json:"item_id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// RouteChecklist is the audit record of a collector's pre-route safety
// confirmation. Persisting it is optional; route start does not depend on it.
type RouteChecklist struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	RouteID     uuid.UUID       `gorm:"type:uuid;not null" json:"route_id"`
	CollectorID uuid.UUID       `gorm:"type:uuid;not null" json:"collector_id"`
	Items       []ChecklistItem `gorm:"type:jsonb;serializer:json" json:"items"`
	CompletedAt time.Time       `gorm:"not null" json:"completed_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (RouteChecklist) TableName() string {
	return "route_checklists"
}

func (c *RouteChecklist) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
