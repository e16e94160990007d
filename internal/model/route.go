package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type RouteStatus string

const (
	RouteStatusScheduled  RouteStatus = "SCHEDULED"
	RouteStatusInProgress RouteStatus = "IN_PROGRESS"
	RouteStatusCompleted  RouteStatus = "COMPLETED"
	RouteStatusCancelled  RouteStatus = "CANCELLED"
)

type RouteBinStatus string

const (
	RouteBinStatusPending   RouteBinStatus = "PENDING"
	RouteBinStatusCollected RouteBinStatus = "COLLECTED"
	RouteBinStatusSkipped   RouteBinStatus = "SKIPPED"
)

type Route struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name          string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	ScheduledDate time.Time   `gorm:"type:date;not null" json:"scheduled_date"`
	ScheduledTime string      `gorm:"type:varchar(8);not null" json:"scheduled_time"`
	AssignedTo    *uuid.UUID  `gorm:"type:uuid" json:"assigned_to"`
	Status        RouteStatus `gorm:"type:route_status;not null;default:'SCHEDULED'" json:"status"`
	StartedAt     *time.Time  `json:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at"`
	CreatedBy     *uuid.UUID  `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Bins      []RouteBin `gorm:"foreignKey:RouteID" json:"bins"`
	Collector *User      `gorm:"foreignKey:AssignedTo" json:"collector,omitempty"`
}

func (Route) TableName() string {
	return "routes"
}

// Terminal reports whether no further status transitions are allowed.
func (r Route) Terminal() bool {
	return r.Status == RouteStatusCompleted || r.Status == RouteStatusCancelled
}

// RouteBin records one bin's participation and outcome within one route.
type RouteBin struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	RouteID     uuid.UUID      `gorm:"type:uuid;not null" json:"route_id"`
	BinID       uuid.UUID      `gorm:"type:uuid;not null" json:"bin_id"`
	Sequence    int            `gorm:"not null" json:"sequence"`
	Status      RouteBinStatus `gorm:"type:route_bin_status;not null;default:'PENDING'" json:"status"`
	CollectedAt *time.Time     `json:"collected_at"`
	SkipReason  string         `gorm:"type:text" json:"skip_reason,omitempty"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`
	PhotoURL    string         `gorm:"type:text" json:"photo_url,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Bin *Bin `gorm:"foreignKey:BinID" json:"bin,omitempty"`
}

func (RouteBin) TableName() string {
	return "route_bins"
}

// Processed reports whether the entry reached a terminal outcome.
func (rb RouteBin) Processed() bool {
	return rb.Status == RouteBinStatusCollected || rb.Status == RouteBinStatusSkipped
}

// RouteProgress is derived from the bin entries and never stored.
type RouteProgress struct {
	Progress      int  `json:"progress"`
	TotalBins     int  `json:"totalBins"`
	CollectedBins int  `json:"collectedBins"`
	PendingBins   int  `json:"pendingBins"`
	SkippedBins   int  `json:"skippedBins"`
	IsComplete    bool `json:"isComplete"`
}

// ComputeProgress derives the progress figures for a set of bin entries.
// A route with zero bins reports 0% and is vacuously complete.
func ComputeProgress(bins []RouteBin) RouteProgress {
	p := RouteProgress{TotalBins: len(bins)}
	for _, rb := range bins {
		switch rb.Status {
		case RouteBinStatusCollected:
			p.CollectedBins++
		case RouteBinStatusSkipped:
			p.SkippedBins++
		default:
			p.PendingBins++
		}
	}
	processed := p.CollectedBins + p.SkippedBins
	if p.TotalBins > 0 {
		p.Progress = int(math.Round(100 * float64(processed) / float64(p.TotalBins)))
	}
	p.IsComplete = processed == p.TotalBins
	return p
}

func ValidRouteStatus(s RouteStatus) bool {
	switch s {
	case RouteStatusScheduled, RouteStatusInProgress, RouteStatusCompleted, RouteStatusCancelled:
		return true
	}
	return false
}
