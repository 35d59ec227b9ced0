// Package payment defines the external payment-processor contract. The real
// processor is not integrated yet; MockGateway stands in for it and records
// every movement so refunds can be inspected in development and tests.
package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrChargeNotFound = errors.New("charge not found")

// Gateway is the surface the order and pool services depend on.
type Gateway interface {
	Charge(ctx context.Context, orderID uint64, amount float64) (ref string, err error)
	Refund(ctx context.Context, chargeRef string, amount float64) (ref string, err error)
	Balance(ctx context.Context, vendorID string) (float64, error)
}

type mockCharge struct {
	OrderID  uint64
	Amount   float64
	Refunded float64
}

// MockGateway approves every charge and tracks refunds against the original
// charge reference.
type MockGateway struct {
	mu       sync.Mutex
	charges  map[string]*mockCharge
	balances map[string]float64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		charges:  make(map[string]*mockCharge),
		balances: make(map[string]float64),
	}
}

func (g *MockGateway) Charge(_ context.Context, orderID uint64, amount float64) (string, error) {
	if amount < 0 {
		return "", errors.New("negative charge amount")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := "ch_" + uuid.NewString()
	g.charges[ref] = &mockCharge{OrderID: orderID, Amount: amount}
	return ref, nil
}

func (g *MockGateway) Refund(_ context.Context, chargeRef string, amount float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.charges[chargeRef]
	if !ok {
		return "", ErrChargeNotFound
	}
	if amount < 0 || ch.Refunded+amount > ch.Amount {
		return "", errors.New("refund exceeds charge")
	}
	ch.Refunded += amount
	return "re_" + uuid.NewString(), nil
}

func (g *MockGateway) Balance(_ context.Context, vendorID string) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[vendorID], nil
}

// CreditVendor seeds a vendor balance. Development helper.
func (g *MockGateway) CreditVendor(vendorID string, amount float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[vendorID] += amount
}
