package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/model"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

type RouteFilter struct {
	Statuses   []model.RouteStatus
	AssignedTo *uuid.UUID
	Unassigned bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

func (r *RouteRepository) Create(ctx context.Context, route *model.Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	var route model.Route
	err := r.db.WithContext(ctx).
		Preload("Bins", func(db *gorm.DB) *gorm.DB {
			return db.Order("route_bins.sequence ASC")
		}).
		Preload("Bins.Bin").
		Preload("Collector").
		First(&route, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) List(ctx context.Context, filter RouteFilter) ([]model.Route, error) {
	query := r.db.WithContext(ctx).Model(&model.Route{})

	if len(filter.Statuses) > 0 {
		query = query.Where("routes.status IN ?", filter.Statuses)
	}
	if filter.AssignedTo != nil {
		query = query.Where("routes.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Unassigned {
		query = query.Where("routes.assigned_to IS NULL")
	}
	if filter.DateFrom != nil {
		query = query.Where("routes.scheduled_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("routes.scheduled_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		query = query.Where("routes.name ILIKE ?", "%"+filter.Search+"%")
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var routes []model.Route
	if err := query.
		Order("routes.scheduled_date DESC, routes.created_at DESC").
		Preload("Bins", func(db *gorm.DB) *gorm.DB {
			return db.Order("route_bins.sequence ASC")
		}).
		Preload("Bins.Bin").
		Preload("Collector").
		Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *RouteRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Route{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RouteRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Route{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceBins swaps the route's bin set for a new ordered one.
func (r *RouteRepository) ReplaceBins(ctx context.Context, routeID uuid.UUID, bins []model.RouteBin) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RouteBin{}, "route_id = ?", routeID).Error; err != nil {
			return err
		}
		if len(bins) == 0 {
			return nil
		}
		return tx.Create(&bins).Error
	})
}

func (r *RouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Route{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RouteRepository) GetRouteBin(ctx context.Context, routeID, binID uuid.UUID) (*model.RouteBin, error) {
	var entry model.RouteBin
	err := r.db.WithContext(ctx).
		First(&entry, "route_id = ? AND bin_id = ?", routeID, binID).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *RouteRepository) UpdateRouteBin(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.RouteBin{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *RouteRepository) CountPendingBins(ctx context.Context, routeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RouteBin{}).
		Where("route_id = ? AND status = ?", routeID, model.RouteBinStatusPending).
		Count(&count).Error
	return count, err
}

func (r *RouteRepository) LogStatusChange(ctx context.Context, logEntry *model.RouteStatusLog) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}

func (r *RouteRepository) SaveChecklist(ctx context.Context, checklist *model.RouteChecklist) error {
	return r.db.WithContext(ctx).Create(checklist).Error
}

func (r *RouteRepository) Stats(ctx context.Context) (model.RouteStats, error) {
	var stats model.RouteStats

	type statusCount struct {
		Status model.RouteStatus
		Count  int64
	}
	var byStatus []statusCount
	if err := r.db.WithContext(ctx).
		Model(&model.Route{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&byStatus).Error; err != nil {
		return stats, err
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case model.RouteStatusScheduled:
			stats.Scheduled = sc.Count
		case model.RouteStatusInProgress:
			stats.InProgress = sc.Count
		case model.RouteStatusCompleted:
			stats.Completed = sc.Count
		case model.RouteStatusCancelled:
			stats.Cancelled = sc.Count
		}
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Route{}).
		Where("assigned_to IS NULL AND status IN ?", []model.RouteStatus{
			model.RouteStatusScheduled,
			model.RouteStatusInProgress,
		}).
		Count(&stats.Unassigned).Error; err != nil {
		return stats, err
	}

	return stats, nil
}
