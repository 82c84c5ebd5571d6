package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iwvelando/sixsigma-portal/pkg/loans"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
)

func TestNoticeFor(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		title       string
		description string
	}{
		{
			name:        "missing fields",
			err:         &validation.MissingFieldsError{Fields: []string{"name"}, Message: validation.MissingFieldsMessage},
			title:       "Missing Information",
			description: "Please fill all required fields.",
		},
		{
			name:        "missing EMI inputs",
			err:         &validation.MissingFieldsError{Fields: []string{"loanTenure"}, Message: validation.MissingEMIInputsMessage},
			title:       "Missing Information",
			description: "Please fill loan amount, interest rate, and tenure to calculate EMI.",
		},
		{
			name:        "login failure",
			err:         ErrAuthenticationFailed,
			title:       "Login Failed",
			description: "Invalid username or password.",
		},
		{
			name:        "duplicate username",
			err:         fmt.Errorf("wrapped: %w", ErrDuplicateUsername),
			title:       "Username Taken",
			description: "This username is already registered.",
		},
		{
			name:  "invalid number",
			err:   fmt.Errorf("loanAmount: %w", loans.ErrInvalidNumber),
			title: "Invalid Number",
		},
		{
			name:  "undefined EMI",
			err:   loans.ErrUndefinedResult,
			title: "Cannot Calculate EMI",
		},
		{
			name:  "storage failure",
			err:   errors.New("disk full"),
			title: "Something Went Wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notice := NoticeFor(tt.err)
			if notice.Title != tt.title {
				t.Errorf("Title = %q, expected %q", notice.Title, tt.title)
			}
			if tt.description != "" && notice.Description != tt.description {
				t.Errorf("Description = %q, expected %q", notice.Description, tt.description)
			}
			if notice.Variant != VariantDestructive {
				t.Errorf("Variant = %q, expected destructive", notice.Variant)
			}
			if strings.Contains(notice.Description, "disk") {
				t.Error("internal errors must not leak into notices")
			}
		})
	}
}

func TestLoginNotice(t *testing.T) {
	notice := LoginNotice("Priya Shah")
	if notice.Title != "Login Successful" || notice.Description != "Welcome back, Priya Shah!" {
		t.Errorf("LoginNotice() = %+v", notice)
	}
}

func TestApplicationJSONKeys(t *testing.T) {
	app := completeApplication()
	app.Stamp("1709288130000", start)

	data, err := json.Marshal(&app)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	out := string(data)

	for _, key := range []string{`"name"`, `"contactNumber"`, `"loanType"`, `"interestRate":""`, `"loanTenure":""`,
		`"submissionDate":"2024-03-01T10:15:30.000Z"`, `"id":"1709288130000"`} {
		if !strings.Contains(out, key) {
			t.Errorf("JSON %s missing %s", out, key)
		}
	}
	if strings.Contains(out, "employeeId") || strings.Contains(out, "employeeName") {
		t.Errorf("customer records must not carry employee keys: %s", out)
	}
	if strings.Index(out, `"salaryType"`) > strings.Index(out, `"submissionDate"`) {
		t.Errorf("form fields should precede submissionDate: %s", out)
	}
}

func TestEmployeeSchema(t *testing.T) {
	required := validation.Describe(EmployeeAccount{}).Required()
	want := []string{"name", "contactNumber", "email", "bankName", "accountNumber", "username", "password"}
	if strings.Join(required, ",") != strings.Join(want, ",") {
		t.Errorf("Required() = %v, expected %v", required, want)
	}

	loanRequired := validation.Describe(LoanApplication{}).Required()
	wantLoan := []string{"name", "contactNumber", "email", "pincode", "loanType", "loanAmount", "salary", "salaryType"}
	if strings.Join(loanRequired, ",") != strings.Join(wantLoan, ",") {
		t.Errorf("Required() = %v, expected %v", loanRequired, wantLoan)
	}

	loanType, _ := validation.Describe(LoanApplication{}).Field("loanType")
	if strings.Join(loanType.Options, ",") != strings.Join(LoanTypes, ",") {
		t.Errorf("loanType options %v do not match LoanTypes %v", loanType.Options, LoanTypes)
	}
	salaryType, _ := validation.Describe(LoanApplication{}).Field("salaryType")
	if strings.Join(salaryType.Options, ",") != strings.Join(SalaryTypes, ",") {
		t.Errorf("salaryType options %v do not match SalaryTypes %v", salaryType.Options, SalaryTypes)
	}
}
