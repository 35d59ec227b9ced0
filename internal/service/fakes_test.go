package service

import (
	"context"
	"sort"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/repository"
	"gorm.io/gorm"
)

// In-memory repository fakes. They honor the same contracts as the GORM
// implementations: archived rows are invisible, listings follow the
// deterministic order and the cursor fails open when its id is unknown.

type fakeUserRepo struct {
	users map[string]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	m := make(map[string]model.User, len(users))
	for _, u := range users {
		m[u.UID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) FindByUID(_ context.Context, uid string) (*model.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.UID] = *u
	return nil
}

type fakeAssignmentRepo struct {
	assignments map[string]model.VesselAssignment
}

func newFakeAssignmentRepo(list ...model.VesselAssignment) *fakeAssignmentRepo {
	m := make(map[string]model.VesselAssignment, len(list))
	for _, a := range list {
		m[a.UserUID] = a
	}
	return &fakeAssignmentRepo{assignments: m}
}

func (f *fakeAssignmentRepo) FindActiveByUser(_ context.Context, userUID string) (*model.VesselAssignment, error) {
	a, ok := f.assignments[userUID]
	if !ok || a.Status == model.AssignmentStatusUnassigned {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a *model.VesselAssignment) error {
	f.assignments[a.UserUID] = *a
	return nil
}

type fakeNotificationRepo struct {
	rows   []model.Notification
	nextID uint64
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.nextID++
	n.ID = f.nextID
	if n.PriorityWeight == 0 {
		n.PriorityWeight = model.PriorityWeightFor(n.Priority)
	}
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationRepo) matches(n model.Notification, q repository.NotificationFilter) bool {
	if n.ArchivedAt != nil {
		return false
	}
	if q.Priority != "" && string(n.Priority) != q.Priority {
		return false
	}
	if q.ObjectType != "" && n.ObjectType != q.ObjectType {
		return false
	}
	if q.ObjectID != "" && n.ObjectID != q.ObjectID {
		return false
	}
	if q.ReadStatus != nil && n.IsRead != *q.ReadStatus {
		return false
	}
	if q.VesselIMO != "" && n.VesselIMO != q.VesselIMO {
		return false
	}
	if q.VendorID != "" && n.VendorID != q.VendorID {
		return false
	}
	return true
}

func (f *fakeNotificationRepo) ListAfter(_ context.Context, q repository.NotificationFilter, cursorID uint64, fetchLimit int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range f.rows {
		if f.matches(n, q) {
			out = append(out, n)
		}
	}
	sortNotifications(out)
	if cursorID != 0 {
		for i, n := range out {
			if n.ID == cursorID {
				out = out[i+1:]
				break
			}
		}
	}
	if len(out) > fetchLimit {
		out = out[:fetchLimit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) FindByID(_ context.Context, id uint64) (*model.Notification, error) {
	for _, n := range f.rows {
		if n.ID == id && n.ArchivedAt == nil {
			cp := n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id uint64) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

type fakeExceptionRepo struct {
	rows   []model.Exception
	nextID uint64
}

func (f *fakeExceptionRepo) Create(_ context.Context, e *model.Exception) error {
	f.nextID++
	e.ID = f.nextID
	if e.SeverityWeight == 0 {
		e.SeverityWeight = model.SeverityWeightFor(e.Severity)
	}
	f.rows = append(f.rows, *e)
	return nil
}

func (f *fakeExceptionRepo) matches(e model.Exception, q repository.ExceptionFilter) bool {
	if e.ArchivedAt != nil {
		return false
	}
	if q.Severity != "" && string(e.Severity) != q.Severity {
		return false
	}
	if q.Status != "" && string(e.Status) != q.Status {
		return false
	}
	if q.ObjectType != "" && e.ObjectType != q.ObjectType {
		return false
	}
	if q.ObjectID != "" && e.ObjectID != q.ObjectID {
		return false
	}
	if q.VesselIMO != "" && e.VesselIMO != q.VesselIMO {
		return false
	}
	if q.VendorID != "" && e.VendorID != q.VendorID {
		return false
	}
	return true
}

func (f *fakeExceptionRepo) ListAfter(_ context.Context, q repository.ExceptionFilter, cursorID uint64, fetchLimit int) ([]model.Exception, error) {
	var out []model.Exception
	for _, e := range f.rows {
		if f.matches(e, q) {
			out = append(out, e)
		}
	}
	sortExceptions(out)
	if cursorID != 0 {
		for i, e := range out {
			if e.ID == cursorID {
				out = out[i+1:]
				break
			}
		}
	}
	if len(out) > fetchLimit {
		out = out[:fetchLimit]
	}
	return out, nil
}

func (f *fakeExceptionRepo) FindByID(_ context.Context, id uint64) (*model.Exception, error) {
	for _, e := range f.rows {
		if e.ID == id && e.ArchivedAt == nil {
			cp := e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExceptionRepo) UpdateStatus(_ context.Context, id uint64, status model.ExceptionStatus) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
		}
	}
	return nil
}

type fakePoolRepo struct {
	pools  map[uint64]model.Pool
	nextID uint64
}

func newFakePoolRepo() *fakePoolRepo {
	return &fakePoolRepo{pools: make(map[uint64]model.Pool)}
}

func (f *fakePoolRepo) Create(_ context.Context, p *model.Pool) error {
	f.nextID++
	p.ID = f.nextID
	f.pools[p.ID] = *p
	return nil
}

func (f *fakePoolRepo) FindByID(_ context.Context, id uint64) (*model.Pool, error) {
	p, ok := f.pools[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakePoolRepo) FindOpenByPort(_ context.Context, port string) (*model.Pool, error) {
	var ids []uint64
	for id := range f.pools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		p := f.pools[id]
		if p.Port == port && p.Status == model.PoolStatusOpen {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePoolRepo) Update(_ context.Context, p *model.Pool) error {
	f.pools[p.ID] = *p
	return nil
}

func (f *fakePoolRepo) List(_ context.Context, status model.PoolStatus) ([]model.Pool, error) {
	var out []model.Pool
	for _, p := range f.pools {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeOrderRepo struct {
	orders map[uint64]model.Order
	nextID uint64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint64]model.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	f.nextID++
	o.ID = f.nextID
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uint64) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, o *model.Order) error {
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrderRepo) ListByPool(_ context.Context, poolID uint64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.PoolID != nil && *o.PoolID == poolID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) ListByBuyer(_ context.Context, buyerUID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.BuyerUID == buyerUID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
