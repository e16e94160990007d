package model

import (
	"time"

	"github.com/google/uuid"
)

type BinType string

const (
	BinTypeGeneralWaste BinType = "GENERAL_WASTE"
	BinTypeRecyclable   BinType = "RECYCLABLE"
	BinTypeOrganic      BinType = "ORGANIC"
	BinTypeHazardous    BinType = "HAZARDOUS"
)

type BinStatus string

const (
	BinStatusActive      BinStatus = "ACTIVE"
	BinStatusFull        BinStatus = "FULL"
	BinStatusMaintenance BinStatus = "MAINTENANCE"
	BinStatusInactive    BinStatus = "INACTIVE"
)

// CollectionUrgency is the display classification of a bin outside any
// route context. A bin at or above 50% fill, or flagged FULL, counts as
// pending collection.
type CollectionUrgency string

const (
	UrgencyPending   CollectionUrgency = "PENDING"
	UrgencyCompleted CollectionUrgency = "COMPLETED"
	UrgencyIssue     CollectionUrgency = "ISSUE"
)

type Bin struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Address         string    `gorm:"type:text;not null" json:"address"`
	Type            BinType   `gorm:"type:bin_type;not null" json:"type"`
	CapacityKg      float64   `gorm:"not null;default:0" json:"capacity_kg"`
	CurrentWeightKg float64   `gorm:"not null;default:0" json:"current_weight_kg"`
	FillLevel       int       `gorm:"not null;default:0" json:"fill_level"`
	Status          BinStatus `gorm:"type:bin_status;not null;default:'ACTIVE'" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Bin) TableName() string {
	return "bins"
}

// DeriveCollectionUrgency is the single source of truth for the
// "does this bin need a visit" classification used by dashboards.
func DeriveCollectionUrgency(bin Bin) CollectionUrgency {
	switch bin.Status {
	case BinStatusMaintenance, BinStatusInactive:
		return UrgencyIssue
	}
	if bin.Status == BinStatusFull || bin.FillLevel >= 50 {
		return UrgencyPending
	}
	return UrgencyCompleted
}

func ValidBinType(t BinType) bool {
	switch t {
	case BinTypeGeneralWaste, BinTypeRecyclable, BinTypeOrganic, BinTypeHazardous:
		return true
	}
	return false
}

func ValidBinStatus(s BinStatus) bool {
	switch s {
	case BinStatusActive, BinStatusFull, BinStatusMaintenance, BinStatusInactive:
		return true
	}
	return false
}
