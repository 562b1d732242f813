// Package pricing computes the delivery fee for a cart. All amounts
// are integer cents, distances whole kilometers.
package pricing

// Policy selects how the delivery fee is computed. Two behaviors have
// shipped: the threshold/base/per-km formula and unconditional free
// delivery. The product owner picks one via configuration.
type Policy string

const (
	PolicyThresholdBased Policy = "threshold-based"
	PolicyAlwaysFree     Policy = "always-free"
)

// ParsePolicy maps a config string to a Policy, defaulting to
// threshold-based for anything unrecognized.
func ParsePolicy(s string) Policy {
	if s == string(PolicyAlwaysFree) {
		return PolicyAlwaysFree
	}
	return PolicyThresholdBased
}

// Settings are the delivery knobs served by the site-settings service.
type Settings struct {
	FreeDeliveryThreshold int64 `json:"free_delivery_threshold"`
	BaseFee               int64 `json:"delivery_base_fee"`
	PerKmFee              int64 `json:"delivery_per_km_fee"`
	OnlinePaymentsEnabled bool  `json:"online_payments_enabled"`
}

// DefaultSettings mirrors the fallbacks used when the settings service
// is unreachable or returns partial data: $50 free-delivery threshold,
// $10 base fee covering the first 5 km, $2 per km after that.
func DefaultSettings() Settings {
	return Settings{
		FreeDeliveryThreshold: 5000,
		BaseFee:               1000,
		PerKmFee:              200,
		OnlinePaymentsEnabled: true,
	}
}

// The base fee covers the first 5 km from the store.
const baseFeeDistanceKm = 5

type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) Calculator {
	return Calculator{policy: policy}
}

func (c Calculator) Policy() Policy {
	return c.policy
}

// DeliveryFee returns the fee in cents for the given subtotal and
// distance. Negative subtotals are a caller error and clamp to 0.
// Distance comes from the caller; there is no geocoding here, so a
// real distance lookup can be swapped in without touching the formula.
func (c Calculator) DeliveryFee(subtotal int64, distanceKm int, s Settings) int64 {
	if c.policy == PolicyAlwaysFree {
		return 0
	}
	if subtotal < 0 {
		subtotal = 0
	}
	if subtotal >= s.FreeDeliveryThreshold {
		return 0
	}
	if distanceKm <= baseFeeDistanceKm {
		return s.BaseFee
	}
	return s.BaseFee + int64(distanceKm-baseFeeDistanceKm)*s.PerKmFee
}
