package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"bondcalc/internal/domain/entity/bond"
	"bondcalc/internal/domain/interfaces"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// decimalLiteral is the plain decimal grammar accepted for numeric strings.
// Go-only forms such as 1_000 or 0x1p4 do not match.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

const (
	wholeNumberTag = "wholenumber"
	maxFrequency   = math.MaxInt32
)

// Validator turns raw request values into bond.Parameters.
// It is safe for concurrent use.
type Validator struct {
	limits   bond.Limits
	validate *validator.Validate
	rules    map[string]string
}

var _ interfaces.ParametersValidator = (*Validator)(nil)

func NewValidator(limits bond.Limits) (*Validator, error) {
	if limits.MinRate > limits.MaxRate {
		return nil, fmt.Errorf("min rate %v exceeds max rate %v", limits.MinRate, limits.MaxRate)
	}
	if limits.MinFrequency < 1 {
		return nil, fmt.Errorf("min frequency must be positive, got %d", limits.MinFrequency)
	}

	validate := validator.New()
	if err := validate.RegisterValidation(wholeNumberTag, isWholeNumber); err != nil {
		return nil, fmt.Errorf("register %s rule: %w", wholeNumberTag, err)
	}

	rateRule := fmt.Sprintf("gte=%s,lte=%s", formatFloat(limits.MinRate), formatFloat(limits.MaxRate))
	return &Validator{
		limits:   limits,
		validate: validate,
		rules: map[string]string{
			bond.FieldFaceValue:        "gte=" + formatFloat(limits.MinFaceValue),
			bond.FieldAnnualCouponRate: rateRule,
			bond.FieldYearsToMaturity:  "gte=" + formatFloat(limits.MinYears),
			bond.FieldAnnualMarketRate: rateRule,
			bond.FieldPaymentFrequency: fmt.Sprintf("gte=%d,lte=%d,%s", limits.MinFrequency, maxFrequency, wholeNumberTag),
		},
	}, nil
}

// Limits returns the limits the validator was built with.
func (v *Validator) Limits() bond.Limits {
	return v.limits
}

// Validate checks presence, numeric type and range of every field and
// reports all violations together.
func (v *Validator) Validate(raw map[string]any) (bond.Parameters, error) {
	verr := &bond.ValidationError{}
	values := make(map[string]float64, len(bond.Fields))

	for _, field := range bond.Fields {
		rawValue, ok := raw[field]
		if !ok {
			verr.Add(bond.MissingFieldViolation(field))
			continue
		}
		num, ok := toFloat(rawValue)
		if !ok {
			verr.Add(bond.TypeViolation(field))
			continue
		}
		if err := v.validate.Var(num, v.rules[field]); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return bond.Parameters{}, fmt.Errorf("%w: check %s: %v", bond.ErrInternal, field, err)
			}
			verr.Add(v.rangeViolation(field, fieldErrs))
			continue
		}
		values[field] = num
	}

	if v.limits.RejectUnknownFields {
		for _, key := range slices.Sorted(maps.Keys(raw)) {
			if !slices.Contains(bond.Fields, key) {
				verr.Add(bond.UnknownFieldViolation(key))
			}
		}
	}

	if verr.HasViolations() {
		return bond.Parameters{}, verr
	}

	return bond.NewParameters(
		v.limits,
		values[bond.FieldFaceValue],
		values[bond.FieldAnnualCouponRate],
		values[bond.FieldYearsToMaturity],
		values[bond.FieldAnnualMarketRate],
		int(values[bond.FieldPaymentFrequency]),
	)
}

func (v *Validator) rangeViolation(field string, errs validator.ValidationErrors) bond.Violation {
	if field == bond.FieldPaymentFrequency {
		for _, fe := range errs {
			if fe.Tag() == "lte" {
				return bond.Violation{
					Field:   field,
					Kind:    bond.ViolationRange,
					Message: fmt.Sprintf("%s must be at most %d", field, maxFrequency),
				}
			}
		}
	}
	return bond.RangeViolation(field, v.limits)
}

// toFloat accepts Go numbers, json.Number and plain decimal strings.
// Blank strings, booleans, null and non-finite values are rejected.
func toFloat(raw any) (float64, bool) {
	switch value := raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		trimmed := strings.TrimSpace(value)
		if !decimalLiteral.MatchString(trimmed) {
			return 0, false
		}
		raw = trimmed
	case json.Number:
		if !decimalLiteral.MatchString(value.String()) {
			return 0, false
		}
	}

	num, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

func isWholeNumber(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return f == math.Trunc(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
