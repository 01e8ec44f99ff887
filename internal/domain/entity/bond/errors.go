package bond

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrValidation  = errors.New("invalid bond parameters")
	ErrCalculation = errors.New("bond calculation failed")
	ErrInternal    = errors.New("internal error")
)

// InvalidValueMessage is returned to callers when pricing yields a non-finite value.
const InvalidValueMessage = "Calculation resulted in an invalid value. Please check your inputs."

type ViolationKind string

const (
	ViolationMissingField ViolationKind = "missing_field"
	ViolationType         ViolationKind = "type"
	ViolationRange        ViolationKind = "range"
	ViolationUnknownField ViolationKind = "unknown_field"
)

// Violation is a single failed constraint on one field.
type Violation struct {
	Field   string
	Kind    ViolationKind
	Message string
}

func MissingFieldViolation(field string) Violation {
	return Violation{Field: field, Kind: ViolationMissingField, Message: field + " is required"}
}

func TypeViolation(field string) Violation {
	return Violation{Field: field, Kind: ViolationType, Message: field + " must be a valid number"}
}

func UnknownFieldViolation(field string) Violation {
	return Violation{Field: field, Kind: ViolationUnknownField, Message: fmt.Sprintf("unknown field %q", field)}
}

// RangeViolation describes the domain constraint of field under limits.
func RangeViolation(field string, limits Limits) Violation {
	var msg string
	switch field {
	case FieldFaceValue:
		msg = fmt.Sprintf("%s must be at least %s", field, formatLimit(limits.MinFaceValue))
	case FieldAnnualCouponRate, FieldAnnualMarketRate:
		msg = fmt.Sprintf("%s must be between %s and %s", field, formatLimit(limits.MinRate), formatLimit(limits.MaxRate))
	case FieldYearsToMaturity:
		msg = fmt.Sprintf("%s must be at least %s", field, formatLimit(limits.MinYears))
	case FieldPaymentFrequency:
		msg = fmt.Sprintf("%s must be a whole number of at least %d", field, limits.MinFrequency)
	default:
		msg = field + " is out of range"
	}
	return Violation{Field: field, Kind: ViolationRange, Message: msg}
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidationError collects every violation found in one input.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Add(v Violation) {
	e.Violations = append(e.Violations, v)
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// Has reports whether any violation is of the given kind.
func (e *ValidationError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Fields returns the offending field names, in the order they were reported.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CalculationError reports a pricing result that cannot be returned.
type CalculationError struct {
	Reason string
}

func (e *CalculationError) Error() string {
	return InvalidValueMessage
}

func (e *CalculationError) Is(target error) bool {
	return target == ErrCalculation
}
