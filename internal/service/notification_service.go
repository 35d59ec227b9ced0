package service

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/harbourbee/harbourbee-backend/internal/authz"
	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/repository"
	"gorm.io/gorm"
)

const defaultPageLimit = 25
const maxPageLimit = 100

// ListParams are the raw query parameters of a listing request, before
// security scoping. "all" and "" both mean no filter.
type ListParams struct {
	Priority   string
	ObjectType string
	ObjectID   string
	ReadStatus string
	VesselIMO  string
	VendorID   string
	Limit      int
	Cursor     string
}

// NotificationPage is one page of a cursor-paginated listing.
type NotificationPage struct {
	Items      []model.Notification
	NextCursor *string
	HasMore    bool
}

type NotificationService interface {
	// Notify is best-effort; delivery of a notification must never break
	// the domain flow that triggered it.
	Notify(ctx context.Context, n *model.Notification)
	List(ctx context.Context, uid string, p ListParams) (*NotificationPage, error)
	MarkRead(ctx context.Context, uid string, id uint64) error
}

type notificationService struct {
	repo        repository.NotificationRepository
	users       repository.UserRepository
	assignments repository.VesselAssignmentRepository
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, assignments repository.VesselAssignmentRepository) NotificationService {
	return &notificationService{repo: repo, users: users, assignments: assignments}
}

func (s *notificationService) Notify(ctx context.Context, n *model.Notification) {
	if n == nil || n.Title == "" || n.ObjectType == "" {
		return
	}
	_ = s.repo.Create(ctx, n)
}

func (s *notificationService) List(ctx context.Context, uid string, p ListParams) (*NotificationPage, error) {
	user, err := s.currentUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	role := authz.Role(user.Role)
	if authz.Can(role, authz.ResourceNotifications) == authz.AccessNone {
		return nil, ErrForbidden
	}

	f := repository.NotificationFilter{
		Priority:   normalizeFilter(p.Priority),
		ObjectType: normalizeFilter(p.ObjectType),
		ObjectID:   normalizeFilter(p.ObjectID),
		ReadStatus: parseReadStatus(p.ReadStatus),
	}

	scoped, empty, err := s.scope(ctx, user, role, p)
	if err != nil {
		return nil, err
	}
	if empty {
		return &NotificationPage{Items: []model.Notification{}}, nil
	}
	f.VesselIMO = scoped.VesselIMO
	f.VendorID = scoped.VendorID

	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	// One extra row tells us whether another page exists without a count
	// query. An unparseable cursor degrades to the first page, same as a
	// stale one.
	cursorID, _ := strconv.ParseUint(p.Cursor, 10, 64)
	rows, err := s.repo.ListAfter(ctx, f, cursorID, limit+1)
	if err != nil {
		return nil, err
	}

	sortNotifications(rows)

	page := &NotificationPage{HasMore: len(rows) > limit}
	if page.HasMore {
		rows = rows[:limit]
	}
	page.Items = rows
	if page.HasMore && len(rows) > 0 {
		c := strconv.FormatUint(rows[len(rows)-1].ID, 10)
		page.NextCursor = &c
	}
	return page, nil
}

type scopeFilter struct {
	VesselIMO string
	VendorID  string
}

// scope applies the non-overridable security filters. Crew are pinned to
// their active vessel assignment, vendors to their vendor id; only the
// privileged roles may substitute an explicit vessel IMO.
func (s *notificationService) scope(ctx context.Context, user *model.User, role authz.Role, p ListParams) (scopeFilter, bool, error) {
	switch role {
	case authz.RoleCrew:
		a, err := s.assignments.FindActiveByUser(ctx, user.UID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Crew without a vessel see nothing rather than everything.
				return scopeFilter{}, true, nil
			}
			return scopeFilter{}, false, err
		}
		return scopeFilter{VesselIMO: a.VesselIMO}, false, nil
	case authz.RoleVendor:
		if user.VendorID == "" {
			// A vendor account with no vendor id has nothing to be
			// scoped to; an empty filter would mean no scope at all.
			return scopeFilter{}, true, nil
		}
		return scopeFilter{VendorID: user.VendorID}, false, nil
	}
	if authz.CanOverrideVesselFilter(role) {
		return scopeFilter{
			VesselIMO: normalizeFilter(p.VesselIMO),
			VendorID:  normalizeFilter(p.VendorID),
		}, false, nil
	}
	return scopeFilter{}, false, nil
}

func (s *notificationService) MarkRead(ctx context.Context, uid string, id uint64) error {
	user, err := s.currentUser(ctx, uid)
	if err != nil {
		return err
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	ok, err := s.canMarkRead(ctx, user, n)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return s.repo.MarkRead(ctx, id)
}

// canMarkRead mirrors the listing scope: a notification may only be
// marked read by its recipient, or, when it has no recipient, by a
// caller whose vessel or vendor scope matches it.
func (s *notificationService) canMarkRead(ctx context.Context, user *model.User, n *model.Notification) (bool, error) {
	role := authz.Role(user.Role)
	if authz.Can(role, authz.ResourceNotifications) >= authz.AccessWrite {
		return true, nil
	}
	if n.RecipientUID != "" {
		return n.RecipientUID == user.UID, nil
	}
	switch role {
	case authz.RoleCrew:
		a, err := s.assignments.FindActiveByUser(ctx, user.UID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return a.VesselIMO != "" && a.VesselIMO == n.VesselIMO, nil
	case authz.RoleVendor:
		return user.VendorID != "" && user.VendorID == n.VendorID, nil
	}
	// Ops and finance roles are not vessel- or vendor-scoped; whatever
	// they can list they can mark read.
	return true, nil
}

func (s *notificationService) currentUser(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func normalizeFilter(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

func parseReadStatus(v string) *bool {
	switch v {
	case "true", "read":
		t := true
		return &t
	case "false", "unread":
		f := false
		return &f
	}
	return nil
}

// sortNotifications imposes the deterministic total order the page
// contract promises: priority weight descending, unread before read,
// newest first, id as the final tiebreak.
func sortNotifications(list []model.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.PriorityWeight != b.PriorityWeight {
			return a.PriorityWeight > b.PriorityWeight
		}
		if a.IsRead != b.IsRead {
			return !a.IsRead
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
