package storage

import (
	"context"
	"testing"

	"github.com/cruiserex/site/services/booking-service/internal/model"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	late, _ := m.Insert(ctx, model.Appointment{Date: "2025-02-01", Time: "09:00", Status: model.StatusPending})
	early, _ := m.Insert(ctx, model.Appointment{Date: "2025-01-01", Time: "15:30", Status: model.StatusPending})
	earlier, _ := m.Insert(ctx, model.Appointment{Date: "2025-01-01", Time: "08:00", Status: model.StatusPending})
	if late.ID != 1 || early.ID != 2 || earlier.ID != 3 {
		t.Fatalf("unexpected ids: %d %d %d", late.ID, early.ID, earlier.ID)
	}

	list, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 || list[0].ID != earlier.ID || list[1].ID != early.ID || list[2].ID != late.ID {
		t.Fatalf("unexpected order: %+v", list)
	}

	updated, err := m.Update(ctx, early.ID, model.Changes{model.FieldStatus: "confirmed"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != model.StatusConfirmed || updated.Date != early.Date {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := m.Delete(ctx, early.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, early.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := m.Update(ctx, 999, model.Changes{model.FieldStatus: "confirmed"}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBuildSet(t *testing.T) {
	set, args, err := buildSet(model.Changes{model.FieldStatus: "cancelled", model.FieldEmail: "a@b.co"})
	if err != nil {
		t.Fatalf("buildSet failed: %v", err)
	}
	if set != `"email" = $1, "status" = $2` {
		t.Fatalf("unexpected set clause: %s", set)
	}
	if len(args) != 2 || args[0] != "a@b.co" || args[1] != "cancelled" {
		t.Fatalf("unexpected args: %v", args)
	}
	if _, _, err := buildSet(model.Changes{"id": "1"}); err == nil {
		t.Fatal("expected error for unsupported column")
	}
	if _, _, err := buildSet(model.Changes{}); err == nil {
		t.Fatal("expected error for empty set")
	}
}
