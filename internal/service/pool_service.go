package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harbourbee/harbourbee-backend/internal/authz"
	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/harbourbee/harbourbee-backend/internal/payment"
	"github.com/harbourbee/harbourbee-backend/internal/pricing"
	"github.com/harbourbee/harbourbee-backend/internal/repository"
	"gorm.io/gorm"
)

// poolWindow is how long a freshly opened pool stays open for other vessels
// to join before its target date.
const poolWindow = 72 * time.Hour

type PoolService interface {
	// JoinForOrder attaches a submitted order to the open pool for its
	// port, creating the pool if the order is the first one. Every pooled
	// order's provisional fee is repriced to the new share.
	JoinForOrder(ctx context.Context, o *model.Order) (*model.Pool, pricing.FeeQuote, error)
	// LeaveForOrder undoes a join whose payment could not be completed,
	// restoring the pool's count, value and sibling fees.
	LeaveForOrder(ctx context.Context, o *model.Order, poolID uint64) error
	Progress(ctx context.Context, uid string, poolID uint64) (*model.Pool, pricing.FeeQuote, error)
	List(ctx context.Context, uid string, status model.PoolStatus) ([]model.Pool, error)
	// Close locks the pool and settles delivery fees: each order's final
	// share is computed from the final participant count and the
	// difference against what was charged is refunded.
	Close(ctx context.Context, uid string, poolID uint64) (*model.Pool, error)
	Dispatch(ctx context.Context, uid string, poolID uint64) (*model.Pool, error)
	Deliver(ctx context.Context, uid string, poolID uint64) (*model.Pool, error)
	Cancel(ctx context.Context, uid string, poolID uint64) (*model.Pool, error)
}

type poolService struct {
	pools     repository.PoolRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	notify    NotificationService
	gateway   payment.Gateway
	baseFee   float64
	threshold int
}

func NewPoolService(pools repository.PoolRepository, orders repository.OrderRepository, users repository.UserRepository, notify NotificationService, gateway payment.Gateway, baseFee float64, threshold int) PoolService {
	return &poolService{
		pools:     pools,
		orders:    orders,
		users:     users,
		notify:    notify,
		gateway:   gateway,
		baseFee:   baseFee,
		threshold: threshold,
	}
}

func (s *poolService) JoinForOrder(ctx context.Context, o *model.Order) (*model.Pool, pricing.FeeQuote, error) {
	pool, err := s.pools.FindOpenByPort(ctx, o.Port)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.FeeQuote{}, err
		}
		pool = nil
	} else if !pool.TargetDate.IsZero() && !time.Now().Before(pool.TargetDate) {
		// Past its target date the pool only awaits operator closure;
		// new orders start a fresh one instead of joining it.
		pool = nil
	}
	if pool == nil {
		pool = &model.Pool{
			Port:       o.Port,
			Status:     model.PoolStatusOpen,
			TargetDate: time.Now().Add(poolWindow),
		}
		if err := s.pools.Create(ctx, pool); err != nil {
			return nil, pricing.FeeQuote{}, err
		}
	}

	pool.OrderCount++
	pool.TotalValue += o.Subtotal
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, pricing.FeeQuote{}, err
	}

	quote := pricing.Quote(s.baseFee, pool.OrderCount, s.threshold)

	// Reprice earlier joiners. Their charges stand until the pool closes;
	// only the provisional figure they see moves.
	siblings, err := s.orders.ListByPool(ctx, pool.ID)
	if err != nil {
		return nil, pricing.FeeQuote{}, err
	}
	for i := range siblings {
		sib := &siblings[i]
		if sib.ID == o.ID {
			continue
		}
		sib.DeliveryFeeProvisional = quote.Fee
		if err := s.orders.Update(ctx, sib); err != nil {
			return nil, pricing.FeeQuote{}, err
		}
		if quote.FreeDelivery && sib.ChargedAmount > 0 {
			s.notify.Notify(ctx, &model.Notification{
				RecipientUID: sib.BuyerUID,
				Title:        "Free delivery unlocked",
				Message:      fmt.Sprintf("Pool for %s reached %d vessels; your %.2f delivery charge will be refunded when the pool closes.", pool.Port, pool.OrderCount, sib.ChargedAmount),
				ObjectType:   model.ObjectTypePool,
				ObjectID:     formatID(pool.ID),
				Priority:     model.NotificationPriorityImportant,
				VesselIMO:    sib.VesselIMO,
			})
		}
	}

	return pool, quote, nil
}

// LeaveForOrder is the compensating half of JoinForOrder: it backs the
// order out of the pool and reprices the remaining members, so a failed
// charge never leaves order_count ahead of the pooled orders.
func (s *poolService) LeaveForOrder(ctx context.Context, o *model.Order, poolID uint64) error {
	pool, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if pool.OrderCount > 0 {
		pool.OrderCount--
	}
	pool.TotalValue -= o.Subtotal
	if pool.TotalValue < 0 {
		pool.TotalValue = 0
	}
	if err := s.pools.Update(ctx, pool); err != nil {
		return err
	}

	quote := pricing.Quote(s.baseFee, pool.OrderCount, s.threshold)
	siblings, err := s.orders.ListByPool(ctx, pool.ID)
	if err != nil {
		return err
	}
	for i := range siblings {
		sib := &siblings[i]
		if sib.ID == o.ID {
			continue
		}
		sib.DeliveryFeeProvisional = quote.Fee
		if err := s.orders.Update(ctx, sib); err != nil {
			return err
		}
	}
	return nil
}

func (s *poolService) Progress(ctx context.Context, uid string, poolID uint64) (*model.Pool, pricing.FeeQuote, error) {
	if _, err := s.requireAccess(ctx, uid, authz.AccessRead); err != nil {
		return nil, pricing.FeeQuote{}, err
	}
	pool, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.FeeQuote{}, ErrNotFound
		}
		return nil, pricing.FeeQuote{}, err
	}
	return pool, pricing.Quote(s.baseFee, pool.OrderCount, s.threshold), nil
}

func (s *poolService) List(ctx context.Context, uid string, status model.PoolStatus) ([]model.Pool, error) {
	if _, err := s.requireAccess(ctx, uid, authz.AccessRead); err != nil {
		return nil, err
	}
	return s.pools.List(ctx, status)
}

func (s *poolService) Close(ctx context.Context, uid string, poolID uint64) (*model.Pool, error) {
	pool, err := s.transition(ctx, uid, poolID, model.PoolStatusLocked)
	if err != nil {
		return nil, err
	}

	finalShare := pricing.ProvisionalFee(s.baseFee, pool.OrderCount)
	if pricing.ThresholdMet(pool.OrderCount, s.threshold) {
		finalShare = 0
	}

	orders, err := s.orders.ListByPool(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := &orders[i]
		refund := pricing.RefundAmount(o.ChargedAmount, finalShare)
		o.DeliveryFeeFinal = &finalShare
		o.DeliveryFeeProvisional = finalShare
		o.Status = model.OrderStatusConfirmed
		if refund > 0 && o.ChargeRef != "" {
			ref, err := s.gateway.Refund(ctx, o.ChargeRef, refund)
			if err != nil {
				return nil, fmt.Errorf("refund order %d: %w", o.ID, err)
			}
			o.RefundRef = ref
			if finalShare == 0 {
				o.PaymentStatus = model.PaymentStatusRefunded
			}
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return nil, err
		}
		s.notify.Notify(ctx, &model.Notification{
			RecipientUID: o.BuyerUID,
			Title:        "Pool closed",
			Message:      fmt.Sprintf("Pool for %s closed with %d vessels; your delivery share is %.2f.", pool.Port, pool.OrderCount, pricing.DisplayFee(finalShare)),
			ObjectType:   model.ObjectTypePool,
			ObjectID:     formatID(pool.ID),
			Priority:     model.NotificationPriorityImportant,
			VesselIMO:    o.VesselIMO,
		})
	}
	return pool, nil
}

func (s *poolService) Dispatch(ctx context.Context, uid string, poolID uint64) (*model.Pool, error) {
	pool, err := s.transition(ctx, uid, poolID, model.PoolStatusInDelivery)
	if err != nil {
		return nil, err
	}
	pool.DeliveryID = uuid.NewString()
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, err
	}
	if err := s.moveOrders(ctx, pool, model.OrderStatusInDelivery); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *poolService) Deliver(ctx context.Context, uid string, poolID uint64) (*model.Pool, error) {
	pool, err := s.transition(ctx, uid, poolID, model.PoolStatusDelivered)
	if err != nil {
		return nil, err
	}
	if err := s.moveOrders(ctx, pool, model.OrderStatusDelivered); err != nil {
		return nil, err
	}
	return pool, nil
}

// Cancel voids the pool and refunds every charged order in full.
func (s *poolService) Cancel(ctx context.Context, uid string, poolID uint64) (*model.Pool, error) {
	pool, err := s.transition(ctx, uid, poolID, model.PoolStatusCancelled)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByPool(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := &orders[i]
		if o.ChargedAmount > 0 && o.ChargeRef != "" {
			ref, err := s.gateway.Refund(ctx, o.ChargeRef, o.ChargedAmount)
			if err != nil {
				return nil, fmt.Errorf("refund order %d: %w", o.ID, err)
			}
			o.RefundRef = ref
			o.PaymentStatus = model.PaymentStatusRefunded
		}
		o.Status = model.OrderStatusCancelled
		if err := s.orders.Update(ctx, o); err != nil {
			return nil, err
		}
		s.notify.Notify(ctx, &model.Notification{
			RecipientUID: o.BuyerUID,
			Title:        "Pool cancelled",
			Message:      fmt.Sprintf("Pool for %s was cancelled; any delivery charge has been refunded.", pool.Port),
			ObjectType:   model.ObjectTypePool,
			ObjectID:     formatID(pool.ID),
			Priority:     model.NotificationPriorityCritical,
			VesselIMO:    o.VesselIMO,
		})
	}
	return pool, nil
}

func (s *poolService) transition(ctx context.Context, uid string, poolID uint64, to model.PoolStatus) (*model.Pool, error) {
	if _, err := s.requireAccess(ctx, uid, authz.AccessWrite); err != nil {
		return nil, err
	}
	pool, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !pool.CanTransition(to) {
		return nil, ErrInvalidTransition
	}
	pool.Status = to
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *poolService) moveOrders(ctx context.Context, pool *model.Pool, to model.OrderStatus) error {
	orders, err := s.orders.ListByPool(ctx, pool.ID)
	if err != nil {
		return err
	}
	for i := range orders {
		o := &orders[i]
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		o.Status = to
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (s *poolService) requireAccess(ctx context.Context, uid string, min authz.Access) (*model.User, error) {
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
	if authz.Can(authz.Role(user.Role), authz.ResourcePools) < min {
		return nil, ErrForbidden
	}
	return user, nil
}

func formatID(id uint64) string {
	return fmt.Sprintf("%d", id)
}
