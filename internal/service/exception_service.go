package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/authz"
	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/repository"
	"gorm.io/gorm"
)

// ExceptionListParams are the raw query parameters of an exception listing.
type ExceptionListParams struct {
	Severity   string
	Status     string
	ObjectType string
	ObjectID   string
	VesselIMO  string
	VendorID   string
	Limit      int
	Cursor     string
}

type ExceptionPage struct {
	Items      []model.Exception
	NextCursor *string
	HasMore    bool
}

// ExceptionDefaults is the filter set seeded into a session at login,
// freely overridable afterwards.
type ExceptionDefaults struct {
	Status     string `json:"status,omitempty"`
	ObjectType string `json:"objectType,omitempty"`
}

type ExceptionService interface {
	Report(ctx context.Context, uid string, e *model.Exception) error
	List(ctx context.Context, uid string, p ExceptionListParams) (*ExceptionPage, error)
	Defaults(ctx context.Context, uid string) (*ExceptionDefaults, error)
	AdvanceStatus(ctx context.Context, uid string, id uint64, to model.ExceptionStatus) (*model.Exception, error)
}

type exceptionService struct {
	repo        repository.ExceptionRepository
	users       repository.UserRepository
	assignments repository.VesselAssignmentRepository
}

func NewExceptionService(repo repository.ExceptionRepository, users repository.UserRepository, assignments repository.VesselAssignmentRepository) ExceptionService {
	return &exceptionService{repo: repo, users: users, assignments: assignments}
}

func (s *exceptionService) Report(ctx context.Context, uid string, e *model.Exception) error {
	user, err := s.lookupUser(ctx, uid)
	if err != nil {
		return err
	}
	if authz.Can(authz.Role(user.Role), authz.ResourceExceptions) < authz.AccessWrite {
		return ErrForbidden
	}
	if e.Title == "" || e.ObjectType == "" {
		return ErrValidation
	}
	switch e.Severity {
	case model.ExceptionSeverityCritical, model.ExceptionSeverityHigh,
		model.ExceptionSeverityMedium, model.ExceptionSeverityLow:
	default:
		return ErrValidation
	}
	if e.Status == "" {
		e.Status = model.ExceptionStatusOpen
	}
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now()
	}
	return s.repo.Create(ctx, e)
}

func (s *exceptionService) List(ctx context.Context, uid string, p ExceptionListParams) (*ExceptionPage, error) {
	user, err := s.lookupUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	role := authz.Role(user.Role)
	if authz.Can(role, authz.ResourceExceptions) == authz.AccessNone {
		return nil, ErrForbidden
	}

	f := repository.ExceptionFilter{
		Severity:   normalizeFilter(p.Severity),
		Status:     normalizeFilter(p.Status),
		ObjectType: normalizeFilter(p.ObjectType),
		ObjectID:   normalizeFilter(p.ObjectID),
	}

	switch role {
	case authz.RoleCrew:
		a, err := s.assignments.FindActiveByUser(ctx, user.UID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ExceptionPage{Items: []model.Exception{}}, nil
			}
			return nil, err
		}
		f.VesselIMO = a.VesselIMO
	case authz.RoleVendor:
		if user.VendorID == "" {
			// A vendor account with no vendor id has nothing to be
			// scoped to; an empty filter would mean no scope at all.
			return &ExceptionPage{Items: []model.Exception{}}, nil
		}
		f.VendorID = user.VendorID
	default:
		if authz.CanOverrideVesselFilter(role) {
			f.VesselIMO = normalizeFilter(p.VesselIMO)
			f.VendorID = normalizeFilter(p.VendorID)
		}
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	cursorID, _ := strconv.ParseUint(p.Cursor, 10, 64)
	rows, err := s.repo.ListAfter(ctx, f, cursorID, limit+1)
	if err != nil {
		return nil, err
	}

	sortExceptions(rows)

	page := &ExceptionPage{HasMore: len(rows) > limit}
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

// Defaults returns the role-driven filter seed: ops staff start on open
// incidents, finance on open finance incidents. Everyone else starts
// unfiltered.
func (s *exceptionService) Defaults(ctx context.Context, uid string) (*ExceptionDefaults, error) {
	user, err := s.lookupUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	switch authz.Role(user.Role) {
	case authz.RoleOpsStaff, authz.RoleOpsAdmin:
		return &ExceptionDefaults{Status: string(model.ExceptionStatusOpen)}, nil
	case authz.RoleFinance:
		return &ExceptionDefaults{
			Status:     string(model.ExceptionStatusOpen),
			ObjectType: model.ObjectTypeFinance,
		}, nil
	}
	return &ExceptionDefaults{}, nil
}

// AdvanceStatus moves an exception forward in its workflow. Severity never
// changes, and status never moves backwards or out of a terminal state.
func (s *exceptionService) AdvanceStatus(ctx context.Context, uid string, id uint64, to model.ExceptionStatus) (*model.Exception, error) {
	user, err := s.lookupUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if authz.Can(authz.Role(user.Role), authz.ResourceExceptions) < authz.AccessWrite {
		return nil, ErrForbidden
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !e.CanAdvanceTo(to) {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	e.Status = to
	return e, nil
}

func (s *exceptionService) lookupUser(ctx context.Context, uid string) (*model.User, error) {
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

func sortExceptions(list []model.Exception) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.SeverityWeight != b.SeverityWeight {
			return a.SeverityWeight > b.SeverityWeight
		}
		if !a.DetectedAt.Equal(b.DetectedAt) {
			return a.DetectedAt.After(b.DetectedAt)
		}
		return a.ID > b.ID
	})
}
