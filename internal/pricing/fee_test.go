package pricing

import (
	"math"
	"testing"
)

func TestProvisionalFee(t *testing.T) {
	tests := []struct {
		name         string
		baseFee      float64
		participants int
		want         float64
	}{
		{"single vessel pays full fee", 100, 1, 100},
		{"two vessels split evenly", 100, 2, 50},
		{"three-way split keeps precision", 100, 3, 100.0 / 3.0},
		{"zero participants treated as one", 100, 0, 100},
		{"negative participants treated as one", 100, -4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProvisionalFee(tt.baseFee, tt.participants); got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestProvisionalFeeNonIncreasing(t *testing.T) {
	prev := math.Inf(1)
	for n := 1; n <= 50; n++ {
		fee := ProvisionalFee(100, n)
		if fee > prev {
			t.Fatalf("fee increased at n=%d: %v > %v", n, fee, prev)
		}
		prev = fee
	}
}

func TestDisplayFee(t *testing.T) {
	if got := DisplayFee(100.0 / 3.0); got != 33.33 {
		t.Fatalf("got=%v want=33.33", got)
	}
	if got := DisplayFee(50); got != 50 {
		t.Fatalf("got=%v want=50", got)
	}
}

func TestThresholdAndRemaining(t *testing.T) {
	tests := []struct {
		name          string
		participants  int
		threshold     int
		wantMet       bool
		wantRemaining int
	}{
		{"below threshold", 1, 3, false, 2},
		{"at threshold", 3, 3, true, 0},
		{"above threshold", 10, 3, true, 0},
		{"empty pool", 0, 3, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThresholdMet(tt.participants, tt.threshold); got != tt.wantMet {
				t.Fatalf("ThresholdMet got=%v want=%v", got, tt.wantMet)
			}
			if got := OrdersRemaining(tt.participants, tt.threshold); got != tt.wantRemaining {
				t.Fatalf("OrdersRemaining got=%d want=%d", got, tt.wantRemaining)
			}
		})
	}
}

func TestProgressPercentClamps(t *testing.T) {
	tests := []struct {
		name         string
		participants int
		threshold    int
		want         float64
	}{
		{"one of three", 1, 3, 100.0 / 3.0},
		{"full", 3, 3, 100},
		{"overshoot clamps", 10, 3, 100},
		{"empty", 0, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProgressPercent(tt.participants, tt.threshold)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestRefundAmount(t *testing.T) {
	tests := []struct {
		name        string
		paid, final float64
		want        float64
	}{
		{"share shrank", 50, 33.33, 16.67},
		{"share waived", 50, 0, 50},
		{"share unchanged", 50, 50, 0},
		{"share grew never charges", 33.33, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RefundAmount(tt.paid, tt.final)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

// Two vessels split $100, a third joins and crosses the threshold: fee
// drops to zero and each prior $50 charge is refunded in full.
func TestQuoteEndToEnd(t *testing.T) {
	q := Quote(100, 2, 3)
	if q.Fee != 50 || q.FeeDisplay != 50.00 || q.FreeDelivery {
		t.Fatalf("unexpected quote at 2 participants: %+v", q)
	}
	if q.OrdersRemaining != 1 {
		t.Fatalf("remaining got=%d want=1", q.OrdersRemaining)
	}

	q = Quote(100, 3, 3)
	if !q.FreeDelivery || q.Fee != 0 || q.FeeDisplay != 0 {
		t.Fatalf("unexpected quote at threshold: %+v", q)
	}
	if got := RefundAmount(50, q.Fee); got != 50 {
		t.Fatalf("refund got=%v want=50", got)
	}
	if q.ProgressPercent != 100 {
		t.Fatalf("progress got=%v want=100", q.ProgressPercent)
	}
}
