package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"collection-service/internal/model"
)

type routeFixture struct {
	svc       *RouteService
	routes    *fakeRouteStore
	bins      *fakeBinStore
	users     *fakeUserStore
	admin     model.Principal
	collector *model.User
	binIDs    []uuid.UUID
}

func newRouteFixture(t *testing.T, binCount int) *routeFixture {
	t.Helper()

	users := newFakeUserStore()
	bins := newFakeBinStore()
	routes := newFakeRouteStore()

	admin := users.add(model.User{
		Email:  "ops@city.example",
		Role:   model.UserRoleAdmin,
		Status: model.UserStatusActive,
	})
	collector := users.add(model.User{
		Email:    "driver@city.example",
		FullName: "Dana Reyes",
		Role:     model.UserRoleCollector,
		Status:   model.UserStatusActive,
	})

	var binIDs []uuid.UUID
	for i := 0; i < binCount; i++ {
		bin := bins.add(model.Bin{
			Address: "44 Harbor Rd",
			Type:    model.BinTypeRecyclable,
			Status:  model.BinStatusActive,
		})
		binIDs = append(binIDs, bin.ID)
	}

	return &routeFixture{
		svc:       NewRouteService(routes, bins, users, nil),
		routes:    routes,
		bins:      bins,
		users:     users,
		admin:     model.Principal{UserID: admin.ID, Role: model.UserRoleAdmin},
		collector: collector,
		binIDs:    binIDs,
	}
}

func (fx *routeFixture) createInput(name string) CreateRouteInput {
	inputs := make([]RouteBinInput, 0, len(fx.binIDs))
	for i, id := range fx.binIDs {
		inputs = append(inputs, RouteBinInput{BinID: id, Sequence: i + 1})
	}
	return CreateRouteInput{
		Name:          name,
		ScheduledDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "07:30",
		Bins:          inputs,
	}
}

func TestCreateRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a scheduled route with ordered bins", func(t *testing.T) {
		fx := newRouteFixture(t, 3)

		record, err := fx.svc.Create(ctx, fx.admin, fx.createInput("Tuesday East"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if record.Route.Status != model.RouteStatusScheduled {
			t.Errorf("status = %s, want SCHEDULED", record.Route.Status)
		}
		if got := len(record.Route.Bins); got != 3 {
			t.Fatalf("bins = %d, want 3", got)
		}
		for i, entry := range record.Route.Bins {
			if entry.Sequence != i+1 {
				t.Errorf("bin %d sequence = %d", i, entry.Sequence)
			}
			if entry.Status != model.RouteBinStatusPending {
				t.Errorf("bin %d status = %s, want PENDING", i, entry.Status)
			}
		}
		if record.Progress.TotalBins != 3 || record.Progress.Progress != 0 {
			t.Errorf("progress = %+v", record.Progress)
		}
		if len(fx.routes.logs) != 1 || fx.routes.logs[0].Note != "route created" {
			t.Errorf("status log = %+v", fx.routes.logs)
		}
	})

	t.Run("rejects non-admin callers", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		caller := model.Principal{UserID: fx.collector.ID, Role: model.UserRoleCollector}

		_, err := fx.svc.Create(ctx, caller, fx.createInput("Nope"))
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		fx := newRouteFixture(t, 2)

		blank := fx.createInput("   ")
		if _, err := fx.svc.Create(ctx, fx.admin, blank); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("blank name: err = %v, want ErrInvalidInput", err)
		}

		noBins := fx.createInput("Empty Run")
		noBins.Bins = nil
		if _, err := fx.svc.Create(ctx, fx.admin, noBins); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("no bins: err = %v, want ErrInvalidInput", err)
		}

		dup := fx.createInput("Dup Bins")
		dup.Bins = append(dup.Bins, dup.Bins[0])
		if _, err := fx.svc.Create(ctx, fx.admin, dup); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("duplicate bin: err = %v, want ErrInvalidInput", err)
		}

		ghost := fx.createInput("Ghost Bin")
		ghost.Bins[0].BinID = uuid.New()
		if _, err := fx.svc.Create(ctx, fx.admin, ghost); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("unknown bin: err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("route names are unique", func(t *testing.T) {
		fx := newRouteFixture(t, 1)

		if _, err := fx.svc.Create(ctx, fx.admin, fx.createInput("Friday South")); err != nil {
			t.Fatalf("first Create: %v", err)
		}
		_, err := fx.svc.Create(ctx, fx.admin, fx.createInput("Friday South"))
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("err = %v, want ErrDuplicate", err)
		}
	})

	t.Run("assignee must hold the collector role", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		resident := fx.users.add(model.User{
			Email:  "resident@city.example",
			Role:   model.UserRoleResident,
			Status: model.UserStatusActive,
		})

		input := fx.createInput("Assigned Run")
		input.AssignedTo = &resident.ID
		_, err := fx.svc.Create(ctx, fx.admin, input)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}

		input.AssignedTo = &fx.collector.ID
		record, err := fx.svc.Create(ctx, fx.admin, input)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if record.Route.AssignedTo == nil || *record.Route.AssignedTo != fx.collector.ID {
			t.Error("assigned_to not stored")
		}
	})
}

func TestListRoutesScoping(t *testing.T) {
	ctx := context.Background()
	fx := newRouteFixture(t, 1)

	other := fx.users.add(model.User{
		Email:  "driver2@city.example",
		Role:   model.UserRoleCollector,
		Status: model.UserStatusActive,
	})
	fx.routes.add(model.Route{Name: "Mine", AssignedTo: &fx.collector.ID, Status: model.RouteStatusScheduled})
	fx.routes.add(model.Route{Name: "Theirs", AssignedTo: &other.ID, Status: model.RouteStatusScheduled})
	fx.routes.add(model.Route{Name: "Nobody's", Status: model.RouteStatusScheduled})

	t.Run("collector sees only assigned routes", func(t *testing.T) {
		caller := model.Principal{UserID: fx.collector.ID, Role: model.UserRoleCollector}
		records, err := fx.svc.List(ctx, caller, ListRoutesOptions{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 1 || records[0].Route.Name != "Mine" {
			t.Errorf("records = %+v", records)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		records, err := fx.svc.List(ctx, fx.admin, ListRoutesOptions{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("records = %d, want 3", len(records))
		}
	})

	t.Run("resident is denied", func(t *testing.T) {
		caller := model.Principal{UserID: uuid.New(), Role: model.UserRoleResident}
		if _, err := fx.svc.List(ctx, caller, ListRoutesOptions{}); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})
}

func TestUpdateRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("edits apply only while scheduled", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Old Name", Status: model.RouteStatusInProgress})

		newName := "New Name"
		_, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{Name: &newName})
		if !errors.Is(err, ErrStateConflict) {
			t.Fatalf("err = %v, want ErrStateConflict", err)
		}
	})

	t.Run("rename checks uniqueness", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		fx.routes.add(model.Route{Name: "Taken", Status: model.RouteStatusScheduled})
		route := fx.routes.add(model.Route{Name: "Original", Status: model.RouteStatusScheduled})

		taken := "Taken"
		if _, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{Name: &taken}); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("err = %v, want ErrDuplicate", err)
		}

		fresh := "Fresh"
		record, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{Name: &fresh})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if record.Route.Name != "Fresh" {
			t.Errorf("name = %q", record.Route.Name)
		}
	})

	t.Run("cancellation is the only status change", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Cancel Me", Status: model.RouteStatusInProgress})

		completed := model.RouteStatusCompleted
		if _, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{Status: &completed}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}

		cancelled := model.RouteStatusCancelled
		record, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{Status: &cancelled})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if record.Route.Status != model.RouteStatusCancelled {
			t.Errorf("status = %s", record.Route.Status)
		}

		// Terminal routes stay put.
		if _, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{Status: &cancelled}); !errors.Is(err, ErrStateConflict) {
			t.Fatalf("re-cancel: err = %v, want ErrStateConflict", err)
		}
	})

	t.Run("bin set replacement", func(t *testing.T) {
		fx := newRouteFixture(t, 2)
		route := fx.routes.add(model.Route{
			Name:   "Swap Bins",
			Status: model.RouteStatusScheduled,
			Bins:   []model.RouteBin{{BinID: fx.binIDs[0], Sequence: 1, Status: model.RouteBinStatusPending}},
		})

		record, err := fx.svc.Update(ctx, fx.admin, route.ID, UpdateRouteInput{
			Bins: []RouteBinInput{
				{BinID: fx.binIDs[1], Sequence: 1},
				{BinID: fx.binIDs[0], Sequence: 2},
			},
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(record.Route.Bins) != 2 {
			t.Fatalf("bins = %d, want 2", len(record.Route.Bins))
		}
		if record.Route.Bins[0].BinID != fx.binIDs[1] {
			t.Error("bin order not replaced")
		}
	})
}

func TestAssignRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns a collector to a scheduled route", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Open Run", Status: model.RouteStatusScheduled})

		record, err := fx.svc.Assign(ctx, fx.admin, route.ID, fx.collector.ID)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if record.Route.AssignedTo == nil || *record.Route.AssignedTo != fx.collector.ID {
			t.Error("assigned_to not set")
		}
	})

	t.Run("rejects once the route has started", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Started", Status: model.RouteStatusInProgress})

		_, err := fx.svc.Assign(ctx, fx.admin, route.ID, fx.collector.ID)
		if !errors.Is(err, ErrStateConflict) {
			t.Fatalf("err = %v, want ErrStateConflict", err)
		}
	})

	t.Run("rejects a non-collector assignee", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Open", Status: model.RouteStatusScheduled})
		resident := fx.users.add(model.User{Email: "r@city.example", Role: model.UserRoleResident})

		_, err := fx.svc.Assign(ctx, fx.admin, route.ID, resident.ID)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestDeleteRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes scheduled and terminal routes", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Done", Status: model.RouteStatusCompleted})

		if err := fx.svc.Delete(ctx, fx.admin, route.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := fx.routes.GetByID(ctx, route.ID); err == nil {
			t.Error("route still present after delete")
		}
	})

	t.Run("refuses a route in progress", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Running", Status: model.RouteStatusInProgress})

		err := fx.svc.Delete(ctx, fx.admin, route.ID)
		if !errors.Is(err, ErrStateConflict) {
			t.Fatalf("err = %v, want ErrStateConflict", err)
		}
	})

	t.Run("admin only", func(t *testing.T) {
		fx := newRouteFixture(t, 1)
		route := fx.routes.add(model.Route{Name: "Guarded", Status: model.RouteStatusScheduled})
		caller := model.Principal{UserID: fx.collector.ID, Role: model.UserRoleCollector}

		if err := fx.svc.Delete(ctx, caller, route.ID); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})
}

func TestListByCollector(t *testing.T) {
	ctx := context.Background()
	fx := newRouteFixture(t, 1)
	fx.routes.add(model.Route{Name: "Run A", AssignedTo: &fx.collector.ID, Status: model.RouteStatusScheduled})
	fx.routes.add(model.Route{Name: "Run B", Status: model.RouteStatusScheduled})

	t.Run("collector reads own schedule", func(t *testing.T) {
		caller := model.Principal{UserID: fx.collector.ID, Role: model.UserRoleCollector}
		records, err := fx.svc.ListByCollector(ctx, caller, fx.collector.ID)
		if err != nil {
			t.Fatalf("ListByCollector: %v", err)
		}
		if len(records) != 1 || records[0].Route.Name != "Run A" {
			t.Errorf("records = %+v", records)
		}
	})

	t.Run("collector cannot read another collector's schedule", func(t *testing.T) {
		caller := model.Principal{UserID: uuid.New(), Role: model.UserRoleCollector}
		_, err := fx.svc.ListByCollector(ctx, caller, fx.collector.ID)
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})
}

func TestRouteStats(t *testing.T) {
	ctx := context.Background()
	fx := newRouteFixture(t, 1)
	fx.routes.add(model.Route{Name: "S", Status: model.RouteStatusScheduled})
	fx.routes.add(model.Route{Name: "P", AssignedTo: &fx.collector.ID, Status: model.RouteStatusInProgress})
	fx.routes.add(model.Route{Name: "C", AssignedTo: &fx.collector.ID, Status: model.RouteStatusCompleted})

	stats, err := fx.svc.Stats(ctx, fx.admin)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Scheduled != 1 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Unassigned != 1 {
		t.Errorf("unassigned = %d, want 1", stats.Unassigned)
	}

	caller := model.Principal{UserID: fx.collector.ID, Role: model.UserRoleCollector}
	if _, err := fx.svc.Stats(ctx, caller); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}
