package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/model"
)

type BinRepository struct {
	db *gorm.DB
}

func NewBinRepository(db *gorm.DB) *BinRepository {
	return &BinRepository{db: db}
}

type BinFilter struct {
	Statuses     []model.BinStatus
	Types        []model.BinType
	MinFillLevel *int
	Search       string
	Limit        int
	Offset       int
}

func (r *BinRepository) Create(ctx context.Context, bin *model.Bin) error {
	return r.db.WithContext(ctx).Create(bin).Error
}

func (r *BinRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Bin, error) {
	var bin model.Bin
	if err := r.db.WithContext(ctx).First(&bin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *BinRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Bin, error) {
	var bins []model.Bin
	if err := r.db.WithContext(ctx).Find(&bins, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return bins, nil
}

func (r *BinRepository) List(ctx context.Context, filter BinFilter) ([]model.Bin, error) {
	query := r.db.WithContext(ctx).Model(&model.Bin{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if filter.MinFillLevel != nil {
		query = query.Where("fill_level >= ?", *filter.MinFillLevel)
	}
	if filter.Search != "" {
		query = query.Where("address ILIKE ?", "%"+filter.Search+"%")
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var bins []model.Bin
	if err := query.Order("created_at DESC").Find(&bins).Error; err != nil {
		return nil, err
	}
	return bins, nil
}

func (r *BinRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Bin{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ResetAfterCollection clears fill and weight once a bin has been emptied.
func (r *BinRepository) ResetAfterCollection(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Bin{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"fill_level":        0,
			"current_weight_kg": 0,
			"status":            model.BinStatusActive,
		}).Error
}

func (r *BinRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Bin{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BinRepository) Stats(ctx context.Context) (model.BinStats, error) {
	var stats model.BinStats

	type statusCount struct {
		Status model.BinStatus
		Count  int64
	}
	var byStatus []statusCount
	if err := r.db.WithContext(ctx).
		Model(&model.Bin{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&byStatus).Error; err != nil {
		return stats, err
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case model.BinStatusActive:
			stats.Active = sc.Count
		case model.BinStatusFull:
			stats.Full = sc.Count
		case model.BinStatusMaintenance:
			stats.Maintenance = sc.Count
		case model.BinStatusInactive:
			stats.Inactive = sc.Count
		}
	}

	// A bin counts as pending collection at 50% fill or when flagged FULL.
	if err := r.db.WithContext(ctx).
		Model(&model.Bin{}).
		Where("fill_level >= ? OR status = ?", 50, model.BinStatusFull).
		Count(&stats.PendingCollection).Error; err != nil {
		return stats, err
	}

	return stats, nil
}
