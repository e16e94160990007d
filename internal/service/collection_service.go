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
)

// CollectionService drives the route execution workflow:
// SCHEDULED → IN_PROGRESS → COMPLETED for routes, and
// PENDING → COLLECTED | SKIPPED for each bin visit. Both entry
// outcomes are terminal; a processed entry can never be revisited.
type CollectionService struct {
	routes RouteStore
	bins   BinStore
	stats  *cache.StatsCache
}

func NewCollectionService(routes RouteStore, bins BinStore, stats *cache.StatsCache) *CollectionService {
	return &CollectionService{routes: routes, bins: bins, stats: stats}
}

type ChecklistInput struct {
	Items       []model.ChecklistItem
	CompletedAt time.Time
}

// Start moves a scheduled route into execution. Only the assigned collector
// may start it. The safety checklist payload, when sent, is persisted for
// audit but never gates the transition server-side.
func (s *CollectionService) Start(ctx context.Context, principal model.Principal, routeID uuid.UUID, checklist *ChecklistInput) (*model.RouteRecord, error) {
	route, err := s.assignedRoute(ctx, principal, routeID)
	if err != nil {
		return nil, err
	}

	switch route.Status {
	case model.RouteStatusScheduled:
	case model.RouteStatusInProgress:
		return nil, fmt.Errorf("%w: route already in progress", ErrStateConflict)
	case model.RouteStatusCompleted:
		return nil, fmt.Errorf("%w: route already completed", ErrStateConflict)
	default:
		return nil, fmt.Errorf("%w: route is cancelled", ErrStateConflict)
	}

	now := time.Now().UTC()
	if err := s.routes.Update(ctx, routeID, map[string]interface{}{
		"status":     model.RouteStatusInProgress,
		"started_at": now,
	}); err != nil {
		return nil, err
	}

	prev := route.Status
	if err := s.routes.LogStatusChange(ctx, &model.RouteStatusLog{
		RouteID:   routeID,
		OldStatus: &prev,
		NewStatus: model.RouteStatusInProgress,
		Note:      "route started",
		ChangedBy: &principal.UserID,
	}); err != nil {
		return nil, err
	}

	if checklist != nil && len(checklist.Items) > 0 {
		completedAt := checklist.CompletedAt
		if completedAt.IsZero() {
			completedAt = now
		}
		if err := s.routes.SaveChecklist(ctx, &model.RouteChecklist{
			RouteID:     routeID,
			CollectorID: principal.UserID,
			Items:       checklist.Items,
			CompletedAt: completedAt,
		}); err != nil {
			return nil, err
		}
	}

	s.stats.Invalidate(ctx, routeStatsCacheKey)
	return s.record(ctx, routeID)
}

// CollectResult carries the updated bin and route after a collect or skip.
type CollectResult struct {
	Bin   model.Bin         `json:"bin"`
	Route model.RouteRecord `json:"route"`
}

// CollectBin marks one pending bin visit as collected and empties the
// underlying bin (fill and weight back to zero, status ACTIVE).
func (s *CollectionService) CollectBin(ctx context.Context, principal model.Principal, routeID, binID uuid.UUID, notes, photoURL string) (*CollectResult, error) {
	entry, err := s.pendingEntry(ctx, principal, routeID, binID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       model.RouteBinStatusCollected,
		"collected_at": now,
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if photoURL != "" {
		updates["photo_url"] = photoURL
	}
	if err := s.routes.UpdateRouteBin(ctx, entry.ID, updates); err != nil {
		return nil, err
	}

	if err := s.bins.ResetAfterCollection(ctx, binID); err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, binStatsCacheKey)
	return s.collectResult(ctx, routeID, binID)
}

// SkipBin marks one pending bin visit as skipped. The reason must be
// non-blank after trimming and is stored verbatim.
func (s *CollectionService) SkipBin(ctx context.Context, principal model.Principal, routeID, binID uuid.UUID, reason string) (*CollectResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: skip reason is required", ErrInvalidInput)
	}

	entry, err := s.pendingEntry(ctx, principal, routeID, binID)
	if err != nil {
		return nil, err
	}

	if err := s.routes.UpdateRouteBin(ctx, entry.ID, map[string]interface{}{
		"status":      model.RouteBinStatusSkipped,
		"skip_reason": reason,
	}); err != nil {
		return nil, err
	}

	return s.collectResult(ctx, routeID, binID)
}

// Complete finishes an in-progress route once every bin visit has been
// collected or skipped.
func (s *CollectionService) Complete(ctx context.Context, principal model.Principal, routeID uuid.UUID) (*model.RouteRecord, error) {
	route, err := s.assignedRoute(ctx, principal, routeID)
	if err != nil {
		return nil, err
	}

	if route.Status != model.RouteStatusInProgress {
		return nil, fmt.Errorf("%w: route is not in progress", ErrStateConflict)
	}

	pending, err := s.routes.CountPendingBins(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d bins are still pending", ErrStateConflict, pending)
	}

	now := time.Now().UTC()
	if err := s.routes.Update(ctx, routeID, map[string]interface{}{
		"status":       model.RouteStatusCompleted,
		"completed_at": now,
	}); err != nil {
		return nil, err
	}

	prev := route.Status
	if err := s.routes.LogStatusChange(ctx, &model.RouteStatusLog{
		RouteID:   routeID,
		OldStatus: &prev,
		NewStatus: model.RouteStatusCompleted,
		Note:      "route completed",
		ChangedBy: &principal.UserID,
	}); err != nil {
		return nil, err
	}

	s.stats.Invalidate(ctx, routeStatsCacheKey)
	return s.record(ctx, routeID)
}

// ProgressResult is the wire shape of the progress query.
type ProgressResult struct {
	model.RouteProgress
	Route *model.Route `json:"route,omitempty"`
}

func (s *CollectionService) Progress(ctx context.Context, principal model.Principal, routeID uuid.UUID) (*ProgressResult, error) {
	route, err := s.visibleRoute(ctx, principal, routeID)
	if err != nil {
		return nil, err
	}
	return &ProgressResult{
		RouteProgress: model.ComputeProgress(route.Bins),
		Route:         route,
	}, nil
}

// assignedRoute loads a route and checks the caller is its assigned collector.
func (s *CollectionService) assignedRoute(ctx context.Context, principal model.Principal, routeID uuid.UUID) (*model.Route, error) {
	route, err := s.mustGet(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.AssignedTo == nil || *route.AssignedTo != principal.UserID {
		return nil, fmt.Errorf("%w: route is not assigned to you", ErrPermissionDenied)
	}
	return route, nil
}

func (s *CollectionService) visibleRoute(ctx context.Context, principal model.Principal, routeID uuid.UUID) (*model.Route, error) {
	if principal.IsResident() {
		return nil, ErrPermissionDenied
	}
	route, err := s.mustGet(ctx, routeID)
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

// pendingEntry validates the collect/skip preconditions: the route is in
// progress and assigned to the caller, the bin belongs to the route, and
// the entry has not already been processed.
func (s *CollectionService) pendingEntry(ctx context.Context, principal model.Principal, routeID, binID uuid.UUID) (*model.RouteBin, error) {
	route, err := s.assignedRoute(ctx, principal, routeID)
	if err != nil {
		return nil, err
	}
	if route.Status != model.RouteStatusInProgress {
		return nil, fmt.Errorf("%w: route is not in progress", ErrStateConflict)
	}

	entry, err := s.routes.GetRouteBin(ctx, routeID, binID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bin is not part of this route", ErrNotFound)
		}
		return nil, err
	}

	switch entry.Status {
	case model.RouteBinStatusCollected:
		return nil, fmt.Errorf("%w: bin already collected", ErrStateConflict)
	case model.RouteBinStatusSkipped:
		return nil, fmt.Errorf("%w: bin already skipped", ErrStateConflict)
	}
	return entry, nil
}

func (s *CollectionService) mustGet(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route not found", ErrNotFound)
		}
		return nil, err
	}
	return route, nil
}

func (s *CollectionService) record(ctx context.Context, id uuid.UUID) (*model.RouteRecord, error) {
	route, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record := buildRouteRecord(*route)
	return &record, nil
}

func (s *CollectionService) collectResult(ctx context.Context, routeID, binID uuid.UUID) (*CollectResult, error) {
	bin, err := s.bins.GetByID(ctx, binID)
	if err != nil {
		return nil, err
	}
	record, err := s.record(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return &CollectResult{Bin: *bin, Route: *record}, nil
}
