package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/harbourbee/harbourbee-backend/internal/authz"
	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/payment"
	"github.com/harbourbee/harbourbee-backend/internal/pricing"
	"github.com/harbourbee/harbourbee-backend/internal/repository"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// CheckoutResult is what the vessel sees after submitting: the order with
// its pool and the fee picture at that moment.
type CheckoutResult struct {
	Order *model.Order
	Pool  *model.Pool
	Quote pricing.FeeQuote
}

type OrderService interface {
	CreateDraft(ctx context.Context, uid, port string, items []OrderItemInput) (*model.Order, error)
	Checkout(ctx context.Context, uid string, orderID uint64) (*CheckoutResult, error)
	ListMine(ctx context.Context, uid string) ([]model.Order, error)
}

type orderService struct {
	orders      repository.OrderRepository
	users       repository.UserRepository
	assignments repository.VesselAssignmentRepository
	pools       PoolService
	notify      NotificationService
	gateway     payment.Gateway
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, assignments repository.VesselAssignmentRepository, pools PoolService, notify NotificationService, gateway payment.Gateway) OrderService {
	return &orderService{
		orders:      orders,
		users:       users,
		assignments: assignments,
		pools:       pools,
		notify:      notify,
		gateway:     gateway,
	}
}

func (s *orderService) CreateDraft(ctx context.Context, uid, port string, items []OrderItemInput) (*model.Order, error) {
	user, err := s.requireWriter(ctx, uid)
	if err != nil {
		return nil, err
	}
	if port == "" || len(items) == 0 {
		return nil, ErrValidation
	}

	// Orders are placed for the vessel the user currently serves on.
	a, err := s.assignments.FindActiveByUser(ctx, user.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active vessel assignment", ErrValidation)
		}
		return nil, err
	}

	o := &model.Order{
		BuyerUID:      user.UID,
		VesselIMO:     a.VesselIMO,
		Port:          port,
		Status:        model.OrderStatusDraft,
		PaymentStatus: model.PaymentStatusUnpaid,
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
			return nil, ErrValidation
		}
		o.Items = append(o.Items, model.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
		o.Subtotal += float64(it.Quantity) * it.UnitPrice
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Checkout submits a draft: the order joins its port's pool, the
// provisional delivery share is charged (or waived past the threshold) and
// the order becomes pooled.
func (s *orderService) Checkout(ctx context.Context, uid string, orderID uint64) (*CheckoutResult, error) {
	if _, err := s.requireWriter(ctx, uid); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != uid {
		return nil, ErrForbidden
	}
	if o.Status != model.OrderStatusDraft {
		return nil, ErrInvalidTransition
	}

	o.Status = model.OrderStatusSubmitted
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	pool, quote, err := s.pools.JoinForOrder(ctx, o)
	if err != nil {
		return nil, err
	}

	o.PoolID = &pool.ID
	o.DeliveryFeeProvisional = quote.Fee
	if quote.Fee > 0 {
		ref, err := s.gateway.Charge(ctx, o.ID, quote.Fee)
		if err != nil {
			// Back the order out of the pool so its count and the
			// sibling fees match the orders that actually paid.
			_ = s.pools.LeaveForOrder(ctx, o, pool.ID)
			o.Status = model.OrderStatusDraft
			o.PoolID = nil
			o.DeliveryFeeProvisional = 0
			_ = s.orders.Update(ctx, o)
			return nil, fmt.Errorf("charge order %d: %w", o.ID, err)
		}
		o.ChargeRef = ref
		o.ChargedAmount = quote.Fee
		o.PaymentStatus = model.PaymentStatusPaid
	} else {
		o.PaymentStatus = model.PaymentStatusWaived
	}
	o.Status = model.OrderStatusPooled
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	s.notify.Notify(ctx, &model.Notification{
		RecipientUID: o.BuyerUID,
		Title:        "Order pooled",
		Message:      fmt.Sprintf("Your order joined the %s pool (%d vessel(s)); provisional delivery fee %.2f.", o.Port, pool.OrderCount, quote.FeeDisplay),
		ObjectType:   model.ObjectTypeOrder,
		ObjectID:     formatID(o.ID),
		Priority:     model.NotificationPriorityInformational,
		VesselIMO:    o.VesselIMO,
	})

	return &CheckoutResult{Order: o, Pool: pool, Quote: quote}, nil
}

func (s *orderService) ListMine(ctx context.Context, uid string) ([]model.Order, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	return s.orders.ListByBuyer(ctx, uid)
}

func (s *orderService) requireWriter(ctx context.Context, uid string) (*model.User, error) {
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
	if authz.Can(authz.Role(user.Role), authz.ResourceOrders) < authz.AccessWrite {
		return nil, ErrForbidden
	}
	return user, nil
}
