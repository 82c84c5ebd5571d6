package portal

import (
	"errors"
	"fmt"

	"github.com/iwvelando/sixsigma-portal/pkg/loans"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
)

// Notice variants.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notice is the transient message shown after a form action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Success notices.
var (
	NoticeApplicationSubmitted = Notice{
		Title:       "Application Submitted!",
		Description: "Your loan application has been submitted successfully. We will contact you soon.",
		Variant:     VariantDefault,
	}
	NoticeRegistrationSuccessful = Notice{
		Title:       "Registration Successful",
		Description: "Your employee account has been created successfully!",
		Variant:     VariantDefault,
	}
	NoticeCustomerAdded = Notice{
		Title:       "Customer Added Successfully",
		Description: "Customer loan application has been recorded.",
		Variant:     VariantDefault,
	}
	NoticeLoggedOut = Notice{
		Title:       "Logged Out",
		Description: "You have been logged out.",
		Variant:     VariantDefault,
	}
)

// LoginNotice welcomes a logged-in employee.
func LoginNotice(name string) Notice {
	return Notice{
		Title:       "Login Successful",
		Description: fmt.Sprintf("Welcome back, %s!", name),
		Variant:     VariantDefault,
	}
}

// NoticeFor maps a workflow error to the notice shown to the user.
func NoticeFor(err error) Notice {
	var missing *validation.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return Notice{Title: validation.MissingInformationTitle, Description: missing.Message, Variant: VariantDestructive}
	case errors.Is(err, ErrAuthenticationFailed):
		return Notice{Title: "Login Failed", Description: "Invalid username or password.", Variant: VariantDestructive}
	case errors.Is(err, ErrDuplicateUsername):
		return Notice{Title: "Username Taken", Description: "This username is already registered.", Variant: VariantDestructive}
	case errors.Is(err, loans.ErrInvalidNumber):
		return Notice{Title: "Invalid Number", Description: "Loan amount, interest rate, and tenure must be numbers.", Variant: VariantDestructive}
	case errors.Is(err, loans.ErrUndefinedResult):
		return Notice{Title: "Cannot Calculate EMI", Description: "Interest rate and tenure must be greater than zero.", Variant: VariantDestructive}
	}
	return Notice{Title: "Something Went Wrong", Description: "Please try again in a moment.", Variant: VariantDestructive}
}
