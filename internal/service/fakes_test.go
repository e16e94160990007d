package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collection-service/internal/model"
	"collection-service/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory test doubles for the store interfaces.
// ---------------------------------------------------------------------------

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) add(user model.User) *model.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = &user
	return &user
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) List(_ context.Context, _ repository.UserFilter) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, fullName, phone string) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.FullName = fullName
	user.Phone = phone
	return nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, id uuid.UUID, role model.UserRole) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Role = role
	return nil
}

func (f *fakeUserStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.UserStatus) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Status = status
	return nil
}

func (f *fakeUserStore) AdjustCreditPoints(_ context.Context, id uuid.UUID, delta int) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.CreditPoints += delta
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Stats(_ context.Context) (model.UserStats, error) {
	var stats model.UserStats
	for _, user := range f.users {
		switch user.Role {
		case model.UserRoleAdmin:
			stats.Admins++
		case model.UserRoleCollector:
			stats.Collectors++
		case model.UserRoleResident:
			stats.Residents++
		}
	}
	return stats, nil
}

type fakeBinStore struct {
	bins map[uuid.UUID]*model.Bin
}

func newFakeBinStore() *fakeBinStore {
	return &fakeBinStore{bins: make(map[uuid.UUID]*model.Bin)}
}

func (f *fakeBinStore) add(bin model.Bin) *model.Bin {
	if bin.ID == uuid.Nil {
		bin.ID = uuid.New()
	}
	f.bins[bin.ID] = &bin
	return &bin
}

func (f *fakeBinStore) Create(_ context.Context, bin *model.Bin) error {
	if bin.ID == uuid.Nil {
		bin.ID = uuid.New()
	}
	copied := *bin
	f.bins[bin.ID] = &copied
	return nil
}

func (f *fakeBinStore) GetByID(_ context.Context, id uuid.UUID) (*model.Bin, error) {
	bin, ok := f.bins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *bin
	return &copied, nil
}

func (f *fakeBinStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.Bin, error) {
	out := make([]model.Bin, 0, len(ids))
	for _, id := range ids {
		if bin, ok := f.bins[id]; ok {
			out = append(out, *bin)
		}
	}
	return out, nil
}

func (f *fakeBinStore) List(_ context.Context, _ repository.BinFilter) ([]model.Bin, error) {
	out := make([]model.Bin, 0, len(f.bins))
	for _, bin := range f.bins {
		out = append(out, *bin)
	}
	return out, nil
}

func (f *fakeBinStore) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	bin, ok := f.bins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "address":
			bin.Address = value.(string)
		case "type":
			bin.Type = value.(model.BinType)
		case "capacity_kg":
			bin.CapacityKg = value.(float64)
		case "current_weight_kg":
			bin.CurrentWeightKg = value.(float64)
		case "fill_level":
			bin.FillLevel = value.(int)
		case "status":
			bin.Status = value.(model.BinStatus)
		case "notes":
			bin.Notes = value.(string)
		}
	}
	return nil
}

func (f *fakeBinStore) ResetAfterCollection(_ context.Context, id uuid.UUID) error {
	bin, ok := f.bins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	bin.FillLevel = 0
	bin.CurrentWeightKg = 0
	bin.Status = model.BinStatusActive
	return nil
}

func (f *fakeBinStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.bins[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.bins, id)
	return nil
}

func (f *fakeBinStore) Stats(_ context.Context) (model.BinStats, error) {
	return model.BinStats{}, nil
}

type fakeRouteStore struct {
	routes     map[uuid.UUID]*model.Route
	entries    map[uuid.UUID]*model.RouteBin
	logs       []model.RouteStatusLog
	checklists []model.RouteChecklist
}

func newFakeRouteStore() *fakeRouteStore {
	return &fakeRouteStore{
		routes:  make(map[uuid.UUID]*model.Route),
		entries: make(map[uuid.UUID]*model.RouteBin),
	}
}

func (f *fakeRouteStore) add(route model.Route) *model.Route {
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	bins := route.Bins
	route.Bins = nil
	f.routes[route.ID] = &route
	for _, entry := range bins {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.RouteID = route.ID
		copied := entry
		f.entries[entry.ID] = &copied
	}
	return &route
}

func (f *fakeRouteStore) Create(_ context.Context, route *model.Route) error {
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	copied := *route
	copied.Bins = nil
	f.routes[route.ID] = &copied
	for _, entry := range route.Bins {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.RouteID = route.ID
		stored := entry
		f.entries[entry.ID] = &stored
	}
	return nil
}

func (f *fakeRouteStore) GetByID(_ context.Context, id uuid.UUID) (*model.Route, error) {
	route, ok := f.routes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *route
	copied.Bins = f.routeBins(id)
	return &copied, nil
}

func (f *fakeRouteStore) routeBins(routeID uuid.UUID) []model.RouteBin {
	var bins []model.RouteBin
	for _, entry := range f.entries {
		if entry.RouteID == routeID {
			bins = append(bins, *entry)
		}
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Sequence < bins[j].Sequence })
	return bins
}

func (f *fakeRouteStore) List(_ context.Context, filter repository.RouteFilter) ([]model.Route, error) {
	var out []model.Route
	for id, route := range f.routes {
		if filter.AssignedTo != nil {
			if route.AssignedTo == nil || *route.AssignedTo != *filter.AssignedTo {
				continue
			}
		}
		if filter.Unassigned && route.AssignedTo != nil {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if route.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		copied := *route
		copied.Bins = f.routeBins(id)
		out = append(out, copied)
	}
	return out, nil
}

func (f *fakeRouteStore) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, route := range f.routes {
		if route.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRouteStore) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	route, ok := f.routes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "name":
			route.Name = value.(string)
		case "scheduled_date":
			route.ScheduledDate = value.(time.Time)
		case "scheduled_time":
			route.ScheduledTime = value.(string)
		case "status":
			route.Status = value.(model.RouteStatus)
		case "assigned_to":
			assigned := value.(uuid.UUID)
			route.AssignedTo = &assigned
		case "started_at":
			started := value.(time.Time)
			route.StartedAt = &started
		case "completed_at":
			completed := value.(time.Time)
			route.CompletedAt = &completed
		}
	}
	return nil
}

func (f *fakeRouteStore) ReplaceBins(_ context.Context, routeID uuid.UUID, bins []model.RouteBin) error {
	for id, entry := range f.entries {
		if entry.RouteID == routeID {
			delete(f.entries, id)
		}
	}
	for _, entry := range bins {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.RouteID = routeID
		copied := entry
		f.entries[entry.ID] = &copied
	}
	return nil
}

func (f *fakeRouteStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.routes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.routes, id)
	return nil
}

func (f *fakeRouteStore) GetRouteBin(_ context.Context, routeID, binID uuid.UUID) (*model.RouteBin, error) {
	for _, entry := range f.entries {
		if entry.RouteID == routeID && entry.BinID == binID {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRouteStore) UpdateRouteBin(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	entry, ok := f.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			entry.Status = value.(model.RouteBinStatus)
		case "collected_at":
			collected := value.(time.Time)
			entry.CollectedAt = &collected
		case "skip_reason":
			entry.SkipReason = value.(string)
		case "notes":
			entry.Notes = value.(string)
		case "photo_url":
			entry.PhotoURL = value.(string)
		}
	}
	return nil
}

func (f *fakeRouteStore) CountPendingBins(_ context.Context, routeID uuid.UUID) (int64, error) {
	var count int64
	for _, entry := range f.entries {
		if entry.RouteID == routeID && entry.Status == model.RouteBinStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeRouteStore) LogStatusChange(_ context.Context, logEntry *model.RouteStatusLog) error {
	f.logs = append(f.logs, *logEntry)
	return nil
}

func (f *fakeRouteStore) SaveChecklist(_ context.Context, checklist *model.RouteChecklist) error {
	f.checklists = append(f.checklists, *checklist)
	return nil
}

func (f *fakeRouteStore) Stats(_ context.Context) (model.RouteStats, error) {
	var stats model.RouteStats
	for _, route := range f.routes {
		switch route.Status {
		case model.RouteStatusScheduled:
			stats.Scheduled++
		case model.RouteStatusInProgress:
			stats.InProgress++
		case model.RouteStatusCompleted:
			stats.Completed++
		case model.RouteStatusCancelled:
			stats.Cancelled++
		}
		if route.AssignedTo == nil && !route.Terminal() {
			stats.Unassigned++
		}
	}
	return stats, nil
}
