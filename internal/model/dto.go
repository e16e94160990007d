package model

import (
	"time"

	"github.com/google/uuid"
)

type UserBrief struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
}

type BinBrief struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Type      BinType   `json:"type"`
	FillLevel int       `json:"fill_level"`
	Status    BinStatus `json:"status"`
}

// BinRecord pairs a bin with its derived collection urgency for dashboards.
type BinRecord struct {
	Bin     Bin               `json:"bin"`
	Urgency CollectionUrgency `json:"urgency"`
}

// RouteRecord is the list/detail view of a route with derived progress.
type RouteRecord struct {
	Route     Route         `json:"route"`
	Collector *UserBrief    `json:"collector"`
	Progress  RouteProgress `json:"progress"`
}

type RouteStats struct {
	Scheduled  int64 `json:"scheduled"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Unassigned int64 `json:"unassigned"`
}

type UserStats struct {
	Admins     int64 `json:"admins"`
	Collectors int64 `json:"collectors"`
	Residents  int64 `json:"residents"`
	Active     int64 `json:"active"`
	Suspended  int64 `json:"suspended"`
	Pending    int64 `json:"pending"`
}

type BinStats struct {
	Active            int64 `json:"active"`
	Full              int64 `json:"full"`
	Maintenance       int64 `json:"maintenance"`
	Inactive          int64 `json:"inactive"`
	PendingCollection int64 `json:"pending_collection"`
}

type ChecklistBrief struct {
	ID          uuid.UUID `json:"id"`
	CompletedAt time.Time `json:"completed_at"`
}
