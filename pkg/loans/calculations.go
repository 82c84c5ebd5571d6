// Package loans provides the EMI calculation shared by every portal form.
package loans

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/mathutil"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
)

var (
	// ErrInvalidNumber is returned when an EMI input is not a number.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrUndefinedResult is returned when the inputs produce no finite EMI,
	// e.g. a zero interest rate or a tenure under one year.
	ErrUndefinedResult = errors.New("EMI is undefined for these inputs")
)

// EMIResult holds the whole-unit figures shown to the user.
type EMIResult struct {
	EMI           float64 `json:"emi"`
	TotalAmount   float64 `json:"totalAmount"`
	TotalInterest float64 `json:"totalInterest"`
}

// Finite reports whether every figure is a real number.
func (r EMIResult) Finite() bool {
	return mathutil.IsFinite(r.EMI) && mathutil.IsFinite(r.TotalAmount) && mathutil.IsFinite(r.TotalInterest)
}

// EMIInput is the raw calculator input as typed into a form.
type EMIInput struct {
	LoanAmount   string `json:"loanAmount" validate:"required"`
	InterestRate string `json:"interestRate" validate:"required"`
	LoanTenure   string `json:"loanTenure" validate:"required"`
}

var inputValidator = validation.New()

// maxTenureYears keeps the installment count within an int32.
const maxTenureYears = math.MaxInt32 / constants.MonthsPerYear

// CalculateMonthlyPayment calculates the monthly installment using the standard
// amortization formula. There is no zero-rate branch: a zero rate or zero
// installments yields NaN.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	periodicInterestRate := annualInterestRate / constants.MonthsPerYear / constants.PercentageMultiplier
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	return principal * periodicInterestRate * power / (power - 1.00)
}

// CalculateEMI computes the monthly installment, total payable and total
// interest for a loan of tenureYears whole years. Each figure is derived from
// the unrounded installment and then rounded to a whole unit, halves away
// from zero.
func CalculateEMI(principal, annualInterestRate float64, tenureYears int) EMIResult {
	months := tenureYears * constants.MonthsPerYear
	emi := CalculateMonthlyPayment(principal, annualInterestRate, months)
	totalAmount := emi * float64(months)
	totalInterest := totalAmount - principal

	return EMIResult{
		EMI:           mathutil.RoundWhole(emi),
		TotalAmount:   mathutil.RoundWhole(totalAmount),
		TotalInterest: mathutil.RoundWhole(totalInterest),
	}
}

// PreviewEMI validates raw form input and computes the EMI. Nothing is
// computed when an input is empty (*validation.MissingFieldsError) or not a
// number (ErrInvalidNumber). Tenure is truncated to whole years and must
// land between one year and maxTenureYears. A result that is not finite is
// refused with ErrUndefinedResult.
func PreviewEMI(input EMIInput) (EMIResult, error) {
	if err := inputValidator.Check(input, validation.MissingEMIInputsMessage); err != nil {
		return EMIResult{}, err
	}

	principal, err := parseNumber("loanAmount", input.LoanAmount)
	if err != nil {
		return EMIResult{}, err
	}
	rate, err := parseNumber("interestRate", input.InterestRate)
	if err != nil {
		return EMIResult{}, err
	}
	tenure, err := parseNumber("loanTenure", input.LoanTenure)
	if err != nil {
		return EMIResult{}, err
	}

	years := math.Trunc(tenure)
	if years < 1 || years > maxTenureYears {
		return EMIResult{}, fmt.Errorf("loanTenure %q: %w", input.LoanTenure, ErrUndefinedResult)
	}

	result := CalculateEMI(principal, rate, int(years))
	if !result.Finite() {
		return EMIResult{}, ErrUndefinedResult
	}
	return result, nil
}

func parseNumber(field, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !mathutil.IsFinite(value) {
		return 0, fmt.Errorf("%s %q: %w", field, raw, ErrInvalidNumber)
	}
	return value, nil
}
