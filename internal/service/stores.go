package service

import (
	"context"

	"github.com/google/uuid"

	"collection-service/internal/model"
	"collection-service/internal/repository"
)

// Store interfaces mirror the repository types so unit tests can swap in
// in-memory doubles without a database.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filter repository.UserFilter) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.UserRole) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error
	AdjustCreditPoints(ctx context.Context, id uuid.UUID, delta int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Stats(ctx context.Context) (model.UserStats, error)
}

type BinStore interface {
	Create(ctx context.Context, bin *model.Bin) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Bin, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Bin, error)
	List(ctx context.Context, filter repository.BinFilter) ([]model.Bin, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ResetAfterCollection(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (model.BinStats, error)
}

type RouteStore interface {
	Create(ctx context.Context, route *model.Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Route, error)
	List(ctx context.Context, filter repository.RouteFilter) ([]model.Route, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ReplaceBins(ctx context.Context, routeID uuid.UUID, bins []model.RouteBin) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetRouteBin(ctx context.Context, routeID, binID uuid.UUID) (*model.RouteBin, error)
	UpdateRouteBin(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	CountPendingBins(ctx context.Context, routeID uuid.UUID) (int64, error)
	LogStatusChange(ctx context.Context, logEntry *model.RouteStatusLog) error
	SaveChecklist(ctx context.Context, checklist *model.RouteChecklist) error
	Stats(ctx context.Context) (model.RouteStats, error)
}
