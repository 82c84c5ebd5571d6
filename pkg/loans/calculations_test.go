package loans

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/sixsigma-portal/pkg/validation"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name               string
		principal          float64
		annualInterestRate float64
		termMonths         int
		expectedRange      []float64 // [min, max] expected range
	}{
		{
			name:               "One year personal loan",
			principal:          100000,
			annualInterestRate: 10.0,
			termMonths:         12,
			expectedRange:      []float64{8791, 8792},
		},
		{
			name:               "Twenty year home loan",
			principal:          5000000,
			annualInterestRate: 8.5,
			termMonths:         240,
			expectedRange:      []float64{43380, 43400}, // Around 43391
		},
		{
			name:               "Five year car loan",
			principal:          800000,
			annualInterestRate: 9.0,
			termMonths:         60,
			expectedRange:      []float64{16600, 16620}, // Around 16607
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualInterestRate, tt.termMonths)
			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected between %.2f and %.2f",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateMonthlyPaymentZeroRate(t *testing.T) {
	if result := CalculateMonthlyPayment(120000, 0, 12); !math.IsNaN(result) {
		t.Errorf("CalculateMonthlyPayment() with zero rate = %v, expected NaN", result)
	}
}

func TestCalculateEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		expected  EMIResult
	}{
		{
			name:      "Reference loan",
			principal: 100000,
			rate:      10,
			years:     1,
			expected:  EMIResult{EMI: 8792, TotalAmount: 105499, TotalInterest: 5499},
		},
		{
			name:      "Twenty year home loan",
			principal: 5000000,
			rate:      8.5,
			years:     20,
			expected:  EMIResult{EMI: 43391, TotalAmount: 10413879, TotalInterest: 5413879},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateEMI(tt.principal, tt.rate, tt.years)
			if math.Abs(result.EMI-tt.expected.EMI) > 1 ||
				math.Abs(result.TotalAmount-tt.expected.TotalAmount) > 1 ||
				math.Abs(result.TotalInterest-tt.expected.TotalInterest) > 1 {
				t.Errorf("CalculateEMI() = %+v, expected %+v", result, tt.expected)
			}
			for _, v := range []float64{result.EMI, result.TotalAmount, result.TotalInterest} {
				if v != math.Trunc(v) {
					t.Errorf("CalculateEMI() value %v is not a whole number", v)
				}
			}
		})
	}
}

func TestCalculateEMIReferenceExact(t *testing.T) {
	result := CalculateEMI(100000, 10, 1)
	expected := EMIResult{EMI: 8792, TotalAmount: 105499, TotalInterest: 5499}
	if result != expected {
		t.Errorf("CalculateEMI(100000, 10, 1) = %+v, expected %+v", result, expected)
	}
	if !result.Finite() {
		t.Error("expected a finite result")
	}
}

func TestCalculateEMIZeroRateIsNotFinite(t *testing.T) {
	result := CalculateEMI(100000, 0, 1)
	if result.Finite() {
		t.Errorf("CalculateEMI() with zero rate = %+v, expected non-finite figures", result)
	}
}

func TestPreviewEMI(t *testing.T) {
	result, err := PreviewEMI(EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "1"})
	if err != nil {
		t.Fatalf("PreviewEMI() unexpected error: %v", err)
	}
	if result != (EMIResult{EMI: 8792, TotalAmount: 105499, TotalInterest: 5499}) {
		t.Errorf("PreviewEMI() = %+v", result)
	}
}

func TestPreviewEMITruncatesTenure(t *testing.T) {
	whole, err := PreviewEMI(EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "1"})
	if err != nil {
		t.Fatalf("PreviewEMI() unexpected error: %v", err)
	}
	fractional, err := PreviewEMI(EMIInput{LoanAmount: " 100000 ", InterestRate: "10", LoanTenure: "1.9"})
	if err != nil {
		t.Fatalf("PreviewEMI() unexpected error: %v", err)
	}
	if whole != fractional {
		t.Errorf("tenure 1.9 should behave as 1: %+v vs %+v", fractional, whole)
	}
}

func TestPreviewEMIExponentTenure(t *testing.T) {
	scientific, err := PreviewEMI(EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "2e1"})
	if err != nil {
		t.Fatalf("PreviewEMI() unexpected error: %v", err)
	}
	plain, err := PreviewEMI(EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "20"})
	if err != nil {
		t.Fatalf("PreviewEMI() unexpected error: %v", err)
	}
	if scientific != plain {
		t.Errorf("tenure 2e1 should behave as 20: %+v vs %+v", scientific, plain)
	}
}

func TestPreviewEMIMissingInputs(t *testing.T) {
	tests := []struct {
		name       string
		input      EMIInput
		wantFields []string
	}{
		{"missing amount", EMIInput{InterestRate: "10", LoanTenure: "1"}, []string{"loanAmount"}},
		{"missing rate", EMIInput{LoanAmount: "100000", LoanTenure: "1"}, []string{"interestRate"}},
		{"missing tenure", EMIInput{LoanAmount: "100000", InterestRate: "10"}, []string{"loanTenure"}},
		{"all missing", EMIInput{}, []string{"loanAmount", "interestRate", "loanTenure"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := PreviewEMI(tt.input)
			var missing *validation.MissingFieldsError
			if !errors.As(err, &missing) {
				t.Fatalf("PreviewEMI() error = %v, expected *validation.MissingFieldsError", err)
			}
			if missing.Message != validation.MissingEMIInputsMessage {
				t.Errorf("Message = %q", missing.Message)
			}
			if !reflect.DeepEqual(missing.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, expected %v", missing.Fields, tt.wantFields)
			}
			if result != (EMIResult{}) {
				t.Errorf("expected no result, got %+v", result)
			}
		})
	}
}

func TestPreviewEMIInvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input EMIInput
	}{
		{"word amount", EMIInput{LoanAmount: "lots", InterestRate: "10", LoanTenure: "1"}},
		{"trailing text rate", EMIInput{LoanAmount: "100000", InterestRate: "10%", LoanTenure: "1"}},
		{"word tenure", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "one"}},
		{"NaN amount", EMIInput{LoanAmount: "NaN", InterestRate: "10", LoanTenure: "1"}},
		{"infinite rate", EMIInput{LoanAmount: "100000", InterestRate: "Inf", LoanTenure: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PreviewEMI(tt.input)
			if !errors.Is(err, ErrInvalidNumber) {
				t.Errorf("PreviewEMI() error = %v, expected ErrInvalidNumber", err)
			}
		})
	}
}

func TestPreviewEMIUndefinedResult(t *testing.T) {
	tests := []struct {
		name  string
		input EMIInput
	}{
		{"zero rate", EMIInput{LoanAmount: "100000", InterestRate: "0", LoanTenure: "1"}},
		{"zero tenure", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "0"}},
		{"tenure under a year", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "0.5"}},
		{"negative tenure", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "-1"}},
		{"tenure overflows installments", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "1e18"}},
		{"long integer tenure", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "800000000000000000"}},
		{"tenure past int32 months", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "178956971"}},
		{"astronomical tenure", EMIInput{LoanAmount: "100000", InterestRate: "10", LoanTenure: "1e300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := PreviewEMI(tt.input)
			if !errors.Is(err, ErrUndefinedResult) {
				t.Errorf("PreviewEMI() error = %v, expected ErrUndefinedResult", err)
			}
			if result != (EMIResult{}) {
				t.Errorf("expected no result, got %+v", result)
			}
		})
	}
}
