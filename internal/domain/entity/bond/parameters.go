package bond

import (
	"strconv"
	"strings"
)

// Field names as they appear in requests.
const (
	FieldFaceValue        = "faceValue"
	FieldAnnualCouponRate = "annualCouponRate"
	FieldYearsToMaturity  = "yearsToMaturity"
	FieldAnnualMarketRate = "annualMarketRate"
	FieldPaymentFrequency = "paymentFrequency"
)

// Fields lists the required request fields in reporting order.
var Fields = []string{
	FieldFaceValue,
	FieldAnnualCouponRate,
	FieldYearsToMaturity,
	FieldAnnualMarketRate,
	FieldPaymentFrequency,
}

// Parameters is a validated, read-only set of bond inputs.
// Rates are annual percentages (5 means 5%).
type Parameters struct {
	faceValue        float64
	annualCouponRate float64
	yearsToMaturity  float64
	annualMarketRate float64
	paymentFrequency int
}

// NewParameters checks the values against limits and builds a Parameters.
func NewParameters(limits Limits, faceValue, annualCouponRate, yearsToMaturity, annualMarketRate float64, paymentFrequency int) (Parameters, error) {
	verr := &ValidationError{}
	if faceValue < limits.MinFaceValue {
		verr.Add(RangeViolation(FieldFaceValue, limits))
	}
	if annualCouponRate < limits.MinRate || annualCouponRate > limits.MaxRate {
		verr.Add(RangeViolation(FieldAnnualCouponRate, limits))
	}
	if yearsToMaturity < limits.MinYears {
		verr.Add(RangeViolation(FieldYearsToMaturity, limits))
	}
	if annualMarketRate < limits.MinRate || annualMarketRate > limits.MaxRate {
		verr.Add(RangeViolation(FieldAnnualMarketRate, limits))
	}
	if paymentFrequency < limits.MinFrequency {
		verr.Add(RangeViolation(FieldPaymentFrequency, limits))
	}
	if verr.HasViolations() {
		return Parameters{}, verr
	}
	return Parameters{
		faceValue:        faceValue,
		annualCouponRate: annualCouponRate,
		yearsToMaturity:  yearsToMaturity,
		annualMarketRate: annualMarketRate,
		paymentFrequency: paymentFrequency,
	}, nil
}

func (p Parameters) FaceValue() float64        { return p.faceValue }
func (p Parameters) AnnualCouponRate() float64 { return p.annualCouponRate }
func (p Parameters) YearsToMaturity() float64  { return p.yearsToMaturity }
func (p Parameters) AnnualMarketRate() float64 { return p.annualMarketRate }
func (p Parameters) PaymentFrequency() int     { return p.paymentFrequency }

// PeriodicCouponRate is the coupon rate per payment period as a fraction.
func (p Parameters) PeriodicCouponRate() float64 {
	return p.annualCouponRate / 100 / float64(p.paymentFrequency)
}

// PeriodicMarketRate is the discount rate per payment period as a fraction.
func (p Parameters) PeriodicMarketRate() float64 {
	return p.annualMarketRate / 100 / float64(p.paymentFrequency)
}

// TotalPeriods may be fractional when maturity is not a whole number of periods.
func (p Parameters) TotalPeriods() float64 {
	return p.yearsToMaturity * float64(p.paymentFrequency)
}

// Key renders the inputs in a stable form, suitable as a cache key.
func (p Parameters) Key() string {
	return strings.Join([]string{
		strconv.FormatFloat(p.faceValue, 'g', -1, 64),
		strconv.FormatFloat(p.annualCouponRate, 'g', -1, 64),
		strconv.FormatFloat(p.yearsToMaturity, 'g', -1, 64),
		strconv.FormatFloat(p.annualMarketRate, 'g', -1, 64),
		strconv.Itoa(p.paymentFrequency),
	}, ":")
}
