package pricing

import (
	"fmt"
	"math"
	"strings"

	"bondcalc/internal/domain/entity/bond"
	"bondcalc/internal/domain/interfaces"
)

// ZeroRatePolicy decides what happens when the periodic market rate is zero
// and the annuity factor degenerates to 0/0.
type ZeroRatePolicy string

const (
	// ZeroRateLimit prices coupons at their undiscounted sum, the limit of
	// the annuity factor as the rate goes to zero.
	ZeroRateLimit ZeroRatePolicy = "limit"
	// ZeroRateReject fails the calculation.
	ZeroRateReject ZeroRatePolicy = "reject"
)

func ParseZeroRatePolicy(s string) (ZeroRatePolicy, error) {
	switch p := ZeroRatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ZeroRateLimit, ZeroRateReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown zero rate policy %q", s)
	}
}

// Engine values fixed-coupon bonds by discounting their cash flows at a flat
// market rate. The zero value uses ZeroRateLimit.
type Engine struct {
	zeroRate ZeroRatePolicy
}

var _ interfaces.Pricer = (*Engine)(nil)

func NewEngine(policy ZeroRatePolicy) *Engine {
	if policy == "" {
		policy = ZeroRateLimit
	}
	return &Engine{zeroRate: policy}
}

func (e *Engine) Policy() ZeroRatePolicy {
	if e == nil || e.zeroRate == "" {
		return ZeroRateLimit
	}
	return e.zeroRate
}

func (e *Engine) CacheTag() string {
	return string(e.Policy())
}

// Price returns the present value of the coupons plus the discounted face
// value, rounded to cents.
func (e *Engine) Price(p bond.Parameters) (bond.Money, error) {
	rate := p.PeriodicMarketRate()
	periods := p.TotalPeriods()
	coupon := p.FaceValue() * p.PeriodicCouponRate()

	var pvCoupons, pvFace float64
	if rate == 0 {
		if e.Policy() == ZeroRateReject {
			return bond.Money{}, &bond.CalculationError{Reason: "zero periodic market rate"}
		}
		pvCoupons = coupon * periods
		pvFace = p.FaceValue()
	} else {
		// Log1p and Expm1 keep 1-discount accurate as rate approaches zero.
		x := -periods * math.Log1p(rate)
		pvCoupons = coupon * -math.Expm1(x) / rate
		pvFace = p.FaceValue() * math.Exp(x)
	}

	value := pvCoupons + pvFace
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return bond.Money{}, &bond.CalculationError{Reason: fmt.Sprintf("non-finite present value %v", value)}
	}
	if value < 0 {
		return bond.Money{}, &bond.CalculationError{Reason: fmt.Sprintf("negative present value %v", value)}
	}
	return bond.NewMoney(value), nil
}
