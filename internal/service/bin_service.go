package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/cache"
	"collection-service/internal/model"
	"collection-service/internal/repository"
)

const binStatsCacheKey = "stats:bins"

type BinService struct {
	bins  BinStore
	stats *cache.StatsCache
}

func NewBinService(bins BinStore, stats *cache.StatsCache) *BinService {
	return &BinService{bins: bins, stats: stats}
}

type CreateBinInput struct {
	Address    string
	Type       model.BinType
	CapacityKg float64
	Notes      string
}

func (s *BinService) Create(ctx context.Context, principal model.Principal, input CreateBinInput) (*model.Bin, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if !model.ValidBinType(input.Type) {
		return nil, fmt.Errorf("%w: unknown bin type", ErrInvalidInput)
	}
	if input.CapacityKg < 0 {
		return nil, fmt.Errorf("%w: capacity cannot be negative", ErrInvalidInput)
	}

	bin := &model.Bin{
		Address:    strings.TrimSpace(input.Address),
		Type:       input.Type,
		CapacityKg: input.CapacityKg,
		Status:     model.BinStatusActive,
		Notes:      input.Notes,
	}
	if err := s.bins.Create(ctx, bin); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, binStatsCacheKey)
	return bin, nil
}

func (s *BinService) Get(ctx context.Context, id uuid.UUID) (*model.BinRecord, error) {
	bin, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.BinRecord{Bin: *bin, Urgency: model.DeriveCollectionUrgency(*bin)}, nil
}

type ListBinsOptions struct {
	Statuses     []model.BinStatus
	Types        []model.BinType
	MinFillLevel *int
	Search       string
	Limit        int
	Offset       int
}

func (s *BinService) List(ctx context.Context, opts ListBinsOptions) ([]model.BinRecord, error) {
	bins, err := s.bins.List(ctx, repository.BinFilter{
		Statuses:     opts.Statuses,
		Types:        opts.Types,
		MinFillLevel: opts.MinFillLevel,
		Search:       opts.Search,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	})
	if err != nil {
		return nil, err
	}
	records := make([]model.BinRecord, 0, len(bins))
	for _, bin := range bins {
		records = append(records, model.BinRecord{Bin: bin, Urgency: model.DeriveCollectionUrgency(bin)})
	}
	return records, nil
}

type UpdateBinInput struct {
	Address    *string
	Type       *model.BinType
	CapacityKg *float64
	Status     *model.BinStatus
	Notes      *string
}

func (s *BinService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateBinInput) (*model.Bin, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.mustGet(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Address != nil {
		if strings.TrimSpace(*input.Address) == "" {
			return nil, fmt.Errorf("%w: address cannot be empty", ErrInvalidInput)
		}
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Type != nil {
		if !model.ValidBinType(*input.Type) {
			return nil, fmt.Errorf("%w: unknown bin type", ErrInvalidInput)
		}
		updates["type"] = *input.Type
	}
	if input.CapacityKg != nil {
		if *input.CapacityKg < 0 {
			return nil, fmt.Errorf("%w: capacity cannot be negative", ErrInvalidInput)
		}
		updates["capacity_kg"] = *input.CapacityKg
	}
	if input.Status != nil {
		if !model.ValidBinStatus(*input.Status) {
			return nil, fmt.Errorf("%w: unknown status", ErrInvalidInput)
		}
		updates["status"] = *input.Status
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if err := s.bins.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, binStatsCacheKey)
	return s.bins.GetByID(ctx, id)
}

type OutcomeInput struct {
	Outcome   *model.CollectionUrgency
	FillLevel *int
	WeightKg  *float64
	Notes     *string
}

// ReportOutcome applies a field-reported fill state outside route context.
// A PENDING outcome asserts the bin is materially full: fill below 50 is
// floored at 85 and a non-positive weight is estimated at 75kg.
func (s *BinService) ReportOutcome(ctx context.Context, principal model.Principal, id uuid.UUID, input OutcomeInput) (*model.Bin, error) {
	if principal.IsResident() {
		return nil, ErrPermissionDenied
	}
	bin, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Outcome != nil {
		switch *input.Outcome {
		case model.UrgencyPending:
			fill := bin.FillLevel
			if input.FillLevel != nil {
				fill = *input.FillLevel
			}
			if fill < 50 {
				fill = 85
			}
			weight := bin.CurrentWeightKg
			if input.WeightKg != nil {
				weight = *input.WeightKg
			}
			if weight <= 0 {
				weight = 75
			}
			updates["fill_level"] = fill
			updates["current_weight_kg"] = weight
			if fill >= 100 {
				updates["fill_level"] = 100
				updates["status"] = model.BinStatusFull
			}
		case model.UrgencyCompleted:
			updates["fill_level"] = 0
			updates["current_weight_kg"] = float64(0)
			updates["status"] = model.BinStatusActive
		case model.UrgencyIssue:
			updates["status"] = model.BinStatusMaintenance
		default:
			return nil, fmt.Errorf("%w: unknown outcome", ErrInvalidInput)
		}
	} else {
		if input.FillLevel != nil {
			if *input.FillLevel < 0 || *input.FillLevel > 100 {
				return nil, fmt.Errorf("%w: fill level must be between 0 and 100", ErrInvalidInput)
			}
			updates["fill_level"] = *input.FillLevel
			if *input.FillLevel >= 100 {
				updates["status"] = model.BinStatusFull
			}
		}
		if input.WeightKg != nil {
			if *input.WeightKg < 0 {
				return nil, fmt.Errorf("%w: weight cannot be negative", ErrInvalidInput)
			}
			updates["current_weight_kg"] = *input.WeightKg
		}
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if err := s.bins.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, binStatsCacheKey)
	return s.bins.GetByID(ctx, id)
}

func (s *BinService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.bins.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: bin not found", ErrNotFound)
		}
		return err
	}
	s.stats.Invalidate(ctx, binStatsCacheKey)
	return nil
}

func (s *BinService) Stats(ctx context.Context, principal model.Principal) (model.BinStats, error) {
	if principal.IsResident() {
		return model.BinStats{}, ErrPermissionDenied
	}
	var stats model.BinStats
	if s.stats.Get(ctx, binStatsCacheKey, &stats) {
		return stats, nil
	}
	stats, err := s.bins.Stats(ctx)
	if err != nil {
		return model.BinStats{}, err
	}
	s.stats.Set(ctx, binStatsCacheKey, stats)
	return stats, nil
}

func (s *BinService) mustGet(ctx context.Context, id uuid.UUID) (*model.Bin, error) {
	bin, err := s.bins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bin not found", ErrNotFound)
		}
		return nil, err
	}
	return bin, nil
}
