package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/cache"
	"collection-service/internal/model"
	"collection-service/internal/repository"
)

const routeStatsCacheKey = "stats:routes"

type RouteService struct {
	routes RouteStore
	bins   BinStore
	users  UserStore
	stats  *cache.StatsCache
}

func NewRouteService(routes RouteStore, bins BinStore, users UserStore, stats *cache.StatsCache) *RouteService {
	return &RouteService{routes: routes, bins: bins, users: users, stats: stats}
}

type RouteBinInput struct {
	BinID    uuid.UUID
	Sequence int
}

type CreateRouteInput struct {
	Name          string
	ScheduledDate time.Time
	ScheduledTime string
	Bins          []RouteBinInput
	AssignedTo    *uuid.UUID
}

func (s *RouteService) Create(ctx context.Context, principal model.Principal, input CreateRouteInput) (*model.RouteRecord, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: route name is required", ErrInvalidInput)
	}
	if len(input.Bins) == 0 {
		return nil, fmt.Errorf("%w: route requires at least one bin", ErrInvalidInput)
	}
	if input.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: scheduled date is required", ErrInvalidInput)
	}

	exists, err := s.routes.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: route name already in use", ErrDuplicate)
	}

	entries, err := s.buildBinEntries(ctx, input.Bins)
	if err != nil {
		return nil, err
	}

	if input.AssignedTo != nil {
		if err := s.requireCollector(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	route := &model.Route{
		Name:          name,
		ScheduledDate: input.ScheduledDate,
		ScheduledTime: input.ScheduledTime,
		AssignedTo:    input.AssignedTo,
		Status:        model.RouteStatusScheduled,
		CreatedBy:     &principal.UserID,
		Bins:          entries,
	}
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, err
	}

	if err := s.routes.LogStatusChange(ctx, &model.RouteStatusLog{
		RouteID:   route.ID,
		NewStatus: model.RouteStatusScheduled,
		Note:      "route created",
		ChangedBy: &principal.UserID,
	}); err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, routeStatsCacheKey)
	return s.record(ctx, route.ID)
}

type ListRoutesOptions struct {
	Statuses   []model.RouteStatus
	AssignedTo *uuid.UUID
	Unassigned bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

func (s *RouteService) List(ctx context.Context, principal model.Principal, opts ListRoutesOptions) ([]model.RouteRecord, error) {
	if principal.IsResident() {
		return nil, ErrPermissionDenied
	}

	filter := repository.RouteFilter{
		Statuses:   opts.Statuses,
		AssignedTo: opts.AssignedTo,
		Unassigned: opts.Unassigned,
		DateFrom:   opts.DateFrom,
		DateTo:     opts.DateTo,
		Search:     opts.Search,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}
	// Collectors only ever see their own routes.
	if principal.IsCollector() {
		filter.AssignedTo = &principal.UserID
		filter.Unassigned = false
	}

	routes, err := s.routes.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]model.RouteRecord, 0, len(routes))
	for _, route := range routes {
		records = append(records, buildRouteRecord(route))
	}
	return records, nil
}

func (s *RouteService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.RouteRecord, error) {
	route, err := s.visibleRoute(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	record := buildRouteRecord(*route)
	return &record, nil
}

func (s *RouteService) ListByCollector(ctx context.Context, principal model.Principal, collectorID uuid.UUID) ([]model.RouteRecord, error) {
	if !principal.IsAdmin() && principal.UserID != collectorID {
		return nil, ErrPermissionDenied
	}
	routes, err := s.routes.List(ctx, repository.RouteFilter{AssignedTo: &collectorID})
	if err != nil {
		return nil, err
	}
	records := make([]model.RouteRecord, 0, len(routes))
	for _, route := range routes {
		records = append(records, buildRouteRecord(route))
	}
	return records, nil
}

type UpdateRouteInput struct {
	Name          *string
	ScheduledDate *time.Time
	ScheduledTime *string
	Status        *model.RouteStatus
	Bins          []RouteBinInput
}

// Update edits a route's definition. Field and bin-set edits are allowed
// only while the route is still SCHEDULED; the only status change accepted
// here is cancellation, reachable from SCHEDULED or IN_PROGRESS.
func (s *RouteService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateRouteInput) (*model.RouteRecord, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	route, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		if *input.Status != model.RouteStatusCancelled {
			return nil, fmt.Errorf("%w: only cancellation is allowed here", ErrInvalidInput)
		}
		if route.Terminal() {
			return nil, fmt.Errorf("%w: route already %s", ErrStateConflict, strings.ToLower(string(route.Status)))
		}
		if err := s.routes.Update(ctx, id, map[string]interface{}{"status": model.RouteStatusCancelled}); err != nil {
			return nil, err
		}
		prev := route.Status
		if err := s.routes.LogStatusChange(ctx, &model.RouteStatusLog{
			RouteID:   id,
			OldStatus: &prev,
			NewStatus: model.RouteStatusCancelled,
			Note:      "route cancelled",
			ChangedBy: &principal.UserID,
		}); err != nil {
			return nil, err
		}
		s.stats.Invalidate(ctx, routeStatsCacheKey)
		return s.record(ctx, id)
	}

	if route.Status != model.RouteStatusScheduled {
		return nil, fmt.Errorf("%w: route can only be edited while scheduled", ErrStateConflict)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: route name is required", ErrInvalidInput)
		}
		if name != route.Name {
			exists, err := s.routes.ExistsByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%w: route name already in use", ErrDuplicate)
			}
			updates["name"] = name
		}
	}
	if input.ScheduledDate != nil {
		updates["scheduled_date"] = *input.ScheduledDate
	}
	if input.ScheduledTime != nil {
		updates["scheduled_time"] = *input.ScheduledTime
	}

	if len(updates) > 0 {
		if err := s.routes.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	if input.Bins != nil {
		if len(input.Bins) == 0 {
			return nil, fmt.Errorf("%w: route requires at least one bin", ErrInvalidInput)
		}
		entries, err := s.buildBinEntries(ctx, input.Bins)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entries[i].RouteID = id
		}
		if err := s.routes.ReplaceBins(ctx, id, entries); err != nil {
			return nil, err
		}
	}

	return s.record(ctx, id)
}

func (s *RouteService) Assign(ctx context.Context, principal model.Principal, routeID, collectorID uuid.UUID) (*model.RouteRecord, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	route, err := s.mustGet(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.Status != model.RouteStatusScheduled {
		return nil, fmt.Errorf("%w: collector can only be assigned while route is scheduled", ErrStateConflict)
	}
	if err := s.requireCollector(ctx, collectorID); err != nil {
		return nil, err
	}
	if err := s.routes.Update(ctx, routeID, map[string]interface{}{"assigned_to": collectorID}); err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx, routeStatsCacheKey)
	return s.record(ctx, routeID)
}

func (s *RouteService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	route, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}
	if route.Status == model.RouteStatusInProgress {
		return fmt.Errorf("%w: cannot delete a route in progress", ErrStateConflict)
	}
	if err := s.routes.Delete(ctx, id); err != nil {
		return err
	}
	s.stats.Invalidate(ctx, routeStatsCacheKey)
	return nil
}

func (s *RouteService) Stats(ctx context.Context, principal model.Principal) (model.RouteStats, error) {
	if !principal.IsAdmin() {
		return model.RouteStats{}, ErrPermissionDenied
	}
	var stats model.RouteStats
	if s.stats.Get(ctx, routeStatsCacheKey, &stats) {
		return stats, nil
	}
	stats, err := s.routes.Stats(ctx)
	if err != nil {
		return model.RouteStats{}, err
	}
	s.stats.Set(ctx, routeStatsCacheKey, stats)
	return stats, nil
}

func (s *RouteService) buildBinEntries(ctx context.Context, inputs []RouteBinInput) ([]model.RouteBin, error) {
	seen := make(map[uuid.UUID]bool, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.BinID] {
			return nil, fmt.Errorf("%w: duplicate bin in route", ErrInvalidInput)
		}
		seen[in.BinID] = true
		ids = append(ids, in.BinID)
	}

	bins, err := s.bins.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(bins) != len(ids) {
		return nil, fmt.Errorf("%w: one or more bins do not exist", ErrInvalidInput)
	}

	entries := make([]model.RouteBin, 0, len(inputs))
	for _, in := range inputs {
		entries = append(entries, model.RouteBin{
			BinID:    in.BinID,
			Sequence: in.Sequence,
			Status:   model.RouteBinStatusPending,
		})
	}
	return entries, nil
}

func (s *RouteService) requireCollector(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: collector not found", ErrNotFound)
		}
		return err
	}
	if user.Role != model.UserRoleCollector {
		return fmt.Errorf("%w: user is not a collector", ErrInvalidInput)
	}
	return nil
}

func (s *RouteService) visibleRoute(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Route, error) {
	if principal.IsResident() {
		return nil, ErrPermissionDenied
	}
	route, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.IsCollector() {
		if route.AssignedTo == nil || *route.AssignedTo != principal.UserID {
			return nil, ErrPermissionDenied
		}
	}
	return route, nil
}

func (s *RouteService) mustGet(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route not found", ErrNotFound)
		}
		return nil, err
	}
	return route, nil
}

func (s *RouteService) record(ctx context.Context, id uuid.UUID) (*model.RouteRecord, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := buildRouteRecord(*route)
	return &record, nil
}

func buildRouteRecord(route model.Route) model.RouteRecord {
	record := model.RouteRecord{
		Route:    route,
		Progress: model.ComputeProgress(route.Bins),
	}
	if route.Collector != nil {
		record.Collector = &model.UserBrief{
			ID:       route.Collector.ID,
			FullName: route.Collector.FullName,
			Phone:    route.Collector.Phone,
		}
	}
	return record
}
