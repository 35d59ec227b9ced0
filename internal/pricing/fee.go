// Package pricing computes the shared-delivery fee economics for order
// pools: the provisional per-vessel share, the free-delivery threshold and
// the refund owed when a pool closes with more participants than it had at
// checkout time.
package pricing

import "math"

// ProvisionalFee returns the unrounded per-vessel share of baseFee for the
// given participant count. Counts below 1 are treated as 1, so an order
// with no pool yet pays the full base fee and division by zero cannot
// occur. The result never increases as participants grows.
func ProvisionalFee(baseFee float64, participants int) float64 {
	if participants < 1 {
		participants = 1
	}
	return baseFee / float64(participants)
}

// DisplayFee rounds a fee to two decimal places for presentation. The
// unrounded value stays authoritative for accounting.
func DisplayFee(fee float64) float64 {
	return math.Round(fee*100) / 100
}

// ThresholdMet reports whether the pool has enough participants for
// delivery to be free.
func ThresholdMet(participants, threshold int) bool {
	return participants >= threshold
}

// OrdersRemaining returns how many more vessels must join before delivery
// becomes free. Display-only.
func OrdersRemaining(participants, threshold int) int {
	if remaining := threshold - participants; remaining > 0 {
		return remaining
	}
	return 0
}

// ProgressPercent returns pool fill progress toward the free-delivery
// threshold, clamped to 100 even when the pool overshoots. Display-only.
func ProgressPercent(participants, threshold int) float64 {
	if threshold < 1 {
		threshold = 1
	}
	if participants < 0 {
		participants = 0
	}
	pct := float64(participants) / float64(threshold) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// RefundAmount returns what a vessel is owed when its final share comes in
// under what it paid provisionally. A share that grew instead yields 0:
// additional charges are never applied after the fact.
func RefundAmount(provisionalPaid, finalShare float64) float64 {
	if refund := provisionalPaid - finalShare; refund > 0 {
		return refund
	}
	return 0
}

// FeeQuote bundles everything a checkout or pool-progress view needs.
type FeeQuote struct {
	Fee             float64 `json:"fee"`
	FeeDisplay      float64 `json:"feeDisplay"`
	FreeDelivery    bool    `json:"freeDelivery"`
	OrdersRemaining int     `json:"ordersRemaining"`
	ProgressPercent float64 `json:"progressPercent"`
}

// Quote computes the full fee picture for a pool. When the threshold is met
// the fee is waived entirely.
func Quote(baseFee float64, participants, threshold int) FeeQuote {
	fee := ProvisionalFee(baseFee, participants)
	free := ThresholdMet(participants, threshold)
	if free {
		fee = 0
	}
	return FeeQuote{
		Fee:             fee,
		FeeDisplay:      DisplayFee(fee),
		FreeDelivery:    free,
		OrdersRemaining: OrdersRemaining(participants, threshold),
		ProgressPercent: ProgressPercent(participants, threshold),
	}
}
