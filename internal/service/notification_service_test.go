package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/model"
)

func seedUsers() (*fakeUserRepo, *fakeAssignmentRepo) {
	users := newFakeUserRepo(
		model.User{UID: "crew-1", Role: "crew"},
		model.User{UID: "crew-shorebound", Role: "crew"},
		model.User{UID: "vendor-1", Role: "vendor", VendorID: "vnd-9"},
		model.User{UID: "vendor-unlinked", Role: "vendor"},
		model.User{UID: "staff-1", Role: "ops_staff"},
		model.User{UID: "admin-1", Role: "ops_admin"},
	)
	assignments := newFakeAssignmentRepo(
		model.VesselAssignment{UserUID: "crew-1", VesselIMO: "9123456", Status: model.AssignmentStatusActive},
		model.VesselAssignment{UserUID: "crew-shorebound", VesselIMO: "9000000", Status: model.AssignmentStatusUnassigned},
	)
	return users, assignments
}

func notifSvcWith(rows []model.Notification) (NotificationService, *fakeNotificationRepo) {
	repo := &fakeNotificationRepo{}
	for i := range rows {
		_ = repo.Create(context.Background(), &rows[i])
	}
	users, assignments := seedUsers()
	return NewNotificationService(repo, users, assignments), repo
}

func TestListRejectsUnknownUser(t *testing.T) {
	svc, _ := notifSvcWith(nil)
	if _, err := svc.List(context.Background(), "", ListParams{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty uid: err=%v want ErrUnauthorized", err)
	}
	if _, err := svc.List(context.Background(), "ghost", ListParams{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown uid: err=%v want ErrUnauthorized", err)
	}
}

func TestListCrewScopedToAssignedVessel(t *testing.T) {
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "mine", ObjectType: model.ObjectTypeOrder, Priority: model.NotificationPriorityImportant, VesselIMO: "9123456"},
		{Title: "other vessel", ObjectType: model.ObjectTypeOrder, Priority: model.NotificationPriorityCritical, VesselIMO: "9999999"},
	})

	// The override must be ignored for crew.
	page, err := svc.List(context.Background(), "crew-1", ListParams{VesselIMO: "9999999"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].VesselIMO != "9123456" {
		t.Fatalf("crew scoping leaked: %+v", page.Items)
	}
}

func TestListCrewWithoutVesselSeesNothing(t *testing.T) {
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "n", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityImportant, VesselIMO: "9123456"},
	})
	page, err := svc.List(context.Background(), "crew-shorebound", ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 || page.HasMore {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestListVendorScopedToVendorID(t *testing.T) {
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "ours", ObjectType: model.ObjectTypeVendorOrder, Priority: model.NotificationPriorityImportant, VendorID: "vnd-9"},
		{Title: "theirs", ObjectType: model.ObjectTypeVendorOrder, Priority: model.NotificationPriorityImportant, VendorID: "vnd-7"},
	})
	page, err := svc.List(context.Background(), "vendor-1", ListParams{VendorID: "vnd-7"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].VendorID != "vnd-9" {
		t.Fatalf("vendor scoping leaked: %+v", page.Items)
	}
}

func TestListVendorWithoutVendorIDSeesNothing(t *testing.T) {
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "ours", ObjectType: model.ObjectTypeVendorOrder, Priority: model.NotificationPriorityImportant, VendorID: "vnd-9"},
		{Title: "theirs", ObjectType: model.ObjectTypeVendorOrder, Priority: model.NotificationPriorityImportant, VendorID: "vnd-7"},
	})
	page, err := svc.List(context.Background(), "vendor-unlinked", ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 || page.HasMore {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestListPrivilegedMayOverrideVesselFilter(t *testing.T) {
	rows := []model.Notification{
		{Title: "a", ObjectType: model.ObjectTypeOrder, Priority: model.NotificationPriorityImportant, VesselIMO: "9123456"},
		{Title: "b", ObjectType: model.ObjectTypeOrder, Priority: model.NotificationPriorityImportant, VesselIMO: "9999999"},
	}

	svc, _ := notifSvcWith(rows)
	page, err := svc.List(context.Background(), "admin-1", ListParams{VesselIMO: "9999999"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].VesselIMO != "9999999" {
		t.Fatalf("override not applied: %+v", page.Items)
	}

	// ops_staff is not in the privileged set; the override is dropped and
	// the listing stays unscoped.
	svc, _ = notifSvcWith(rows)
	page, err = svc.List(context.Background(), "staff-1", ListParams{VesselIMO: "9999999"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("staff override should be ignored: %+v", page.Items)
	}
}

func TestListNeverReturnsArchived(t *testing.T) {
	now := time.Now()
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "live", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityImportant},
		{Title: "archived", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityCritical, ArchivedAt: &now},
	})
	page, err := svc.List(context.Background(), "admin-1", ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, n := range page.Items {
		if n.ArchivedAt != nil {
			t.Fatalf("archived notification leaked: %+v", n)
		}
	}
	if len(page.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(page.Items))
	}
}

func TestListEqualityFilters(t *testing.T) {
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "a", ObjectType: model.ObjectTypeOrder, ObjectID: "41", Priority: model.NotificationPriorityCritical},
		{Title: "b", ObjectType: model.ObjectTypePool, ObjectID: "7", Priority: model.NotificationPriorityImportant},
		{Title: "c", ObjectType: model.ObjectTypePool, ObjectID: "7", Priority: model.NotificationPriorityImportant, IsRead: true},
	})

	page, err := svc.List(context.Background(), "admin-1", ListParams{ObjectType: model.ObjectTypePool, ObjectID: "7", ReadStatus: "false"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "b" {
		t.Fatalf("filters wrong: %+v", page.Items)
	}

	// "all" disables a filter rather than matching the literal string.
	page, err = svc.List(context.Background(), "admin-1", ListParams{Priority: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf(`"all" should not filter: %+v`, page.Items)
	}
}

func TestListPaginatesThirtyRowsAcrossTwoPages(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var rows []model.Notification
	for i := 0; i < 30; i++ {
		rows = append(rows, model.Notification{
			Title:      fmt.Sprintf("n-%d", i),
			ObjectType: model.ObjectTypeSystem,
			Priority:   model.NotificationPriorityImportant,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	svc, _ := notifSvcWith(rows)

	first, err := svc.List(context.Background(), "admin-1", ListParams{})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 25 || !first.HasMore || first.NextCursor == nil {
		t.Fatalf("first page wrong: len=%d hasMore=%v cursor=%v", len(first.Items), first.HasMore, first.NextCursor)
	}
	if want := fmt.Sprintf("%d", first.Items[24].ID); *first.NextCursor != want {
		t.Fatalf("cursor=%s want=%s", *first.NextCursor, want)
	}

	second, err := svc.List(context.Background(), "admin-1", ListParams{Cursor: *first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 5 || second.HasMore || second.NextCursor != nil {
		t.Fatalf("second page wrong: len=%d hasMore=%v cursor=%v", len(second.Items), second.HasMore, second.NextCursor)
	}

	seen := map[uint64]bool{}
	for _, n := range append(first.Items, second.Items...) {
		if seen[n.ID] {
			t.Fatalf("duplicate id %d across pages", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestListStaleCursorFailsOpen(t *testing.T) {
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "a", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityImportant},
		{Title: "b", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityImportant},
	})
	page, err := svc.List(context.Background(), "admin-1", ListParams{Cursor: "424242"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("stale cursor should return the first page, got %d items", len(page.Items))
	}

	// Garbage cursors degrade the same way.
	page, err = svc.List(context.Background(), "admin-1", ListParams{Cursor: "not-a-number"})
	if err != nil || len(page.Items) != 2 {
		t.Fatalf("garbage cursor: err=%v len=%d", err, len(page.Items))
	}
}

func TestListUnreadSortsBeforeReadOnEqualWeight(t *testing.T) {
	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	svc, _ := notifSvcWith([]model.Notification{
		{Title: "read-newer", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityInformational, IsRead: true, CreatedAt: jan5},
		{Title: "unread-older", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityInformational, CreatedAt: jan1},
		{Title: "heavier", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityCritical, IsRead: true, CreatedAt: jan1},
	})
	page, err := svc.List(context.Background(), "admin-1", ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{page.Items[0].Title, page.Items[1].Title, page.Items[2].Title}
	want := []string{"heavier", "unread-older", "read-newer"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order got=%v want=%v", got, want)
		}
	}
}

func TestMarkRead(t *testing.T) {
	svc, repo := notifSvcWith([]model.Notification{
		{RecipientUID: "crew-1", Title: "n", ObjectType: model.ObjectTypeOrder, Priority: model.NotificationPriorityImportant, VesselIMO: "9123456"},
	})
	id := repo.rows[0].ID

	if err := svc.MarkRead(context.Background(), "vendor-1", id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign recipient: err=%v want ErrForbidden", err)
	}
	if err := svc.MarkRead(context.Background(), "crew-1", id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !repo.rows[0].IsRead {
		t.Fatalf("notification not marked read")
	}
	// Idempotent.
	if err := svc.MarkRead(context.Background(), "crew-1", id); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if err := svc.MarkRead(context.Background(), "crew-1", 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id: err=%v want ErrNotFound", err)
	}
}

func TestMarkReadWithoutRecipientRequiresMatchingScope(t *testing.T) {
	svc, repo := notifSvcWith([]model.Notification{
		{Title: "vessel-wide", ObjectType: model.ObjectTypeSystem, Priority: model.NotificationPriorityImportant, VesselIMO: "9123456"},
		{Title: "vendor-wide", ObjectType: model.ObjectTypeVendorOrder, Priority: model.NotificationPriorityImportant, VendorID: "vnd-9"},
	})
	vesselID := repo.rows[0].ID
	vendorID := repo.rows[1].ID

	// Crew assigned to the vessel may mark its notifications read.
	if err := svc.MarkRead(context.Background(), "crew-1", vesselID); err != nil {
		t.Fatalf("crew mark own vessel: %v", err)
	}
	// A vendor is outside the vessel's scope.
	if err := svc.MarkRead(context.Background(), "vendor-1", vesselID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("vendor mark vessel row: err=%v want ErrForbidden", err)
	}
	// Crew without a vessel has no scope to match.
	if err := svc.MarkRead(context.Background(), "crew-shorebound", vesselID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("shorebound crew: err=%v want ErrForbidden", err)
	}
	// The vendor the row belongs to may mark it.
	if err := svc.MarkRead(context.Background(), "vendor-1", vendorID); err != nil {
		t.Fatalf("vendor mark own row: %v", err)
	}
	if err := svc.MarkRead(context.Background(), "crew-1", vendorID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("crew mark vendor row: err=%v want ErrForbidden", err)
	}
	// A vendor account with no vendor id matches nothing.
	if err := svc.MarkRead(context.Background(), "vendor-unlinked", vendorID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unlinked vendor: err=%v want ErrForbidden", err)
	}
}
