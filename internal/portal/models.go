// Package portal implements the customer and employee workflows: loan
// applications, employee accounts and the EMI preview shared by both forms.
package portal

import (
	"time"

	"github.com/iwvelando/sixsigma-portal/pkg/datetime"
	"github.com/iwvelando/sixsigma-portal/pkg/loans"
)

// LoanTypes lists the loan products offered, in display order.
var LoanTypes = []string{
	"Home Loan",
	"Personal Loan",
	"Car Loan",
	"Business Loan",
	"Loan Against Property",
	"Others",
}

// SalaryTypes lists the accepted ways a salary is paid.
var SalaryTypes = []string{"Cheque", "Account", "Cash"}

// LoanApplication is a loan enquiry, submitted by a customer or entered by an
// employee on the customer's behalf. Only non-empty required fields are
// enforced; contact details and amounts are stored as typed.
type LoanApplication struct {
	Name          string `json:"name" validate:"required" label:"Full Name" kind:"text"`
	ContactNumber string `json:"contactNumber" validate:"required" label:"Contact Number" kind:"tel"`
	Email         string `json:"email" validate:"required" label:"Email ID" kind:"email"`
	Pincode       string `json:"pincode" validate:"required" label:"Pin Code" kind:"text"`
	LoanType      string `json:"loanType" validate:"required" label:"Type of Loan" kind:"select" options:"Home Loan|Personal Loan|Car Loan|Business Loan|Loan Against Property|Others"`
	LoanAmount    string `json:"loanAmount" validate:"required" label:"Required Loan Amount (₹)" kind:"number"`
	Salary        string `json:"salary" validate:"required" label:"Approximate Salary (₹)" kind:"number"`
	SalaryType    string `json:"salaryType" validate:"required" label:"Salary Type" kind:"select" options:"Cheque|Account|Cash"`
	InterestRate  string `json:"interestRate" label:"Interest Rate (% per annum)" kind:"number"`
	LoanTenure    string `json:"loanTenure" label:"Loan Tenure (Years)" kind:"number"`

	// Set only on applications entered through the employee portal.
	EmployeeID   string `json:"employeeId,omitempty"`
	EmployeeName string `json:"employeeName,omitempty"`

	SubmissionDate string `json:"submissionDate,omitempty"`
	ID             string `json:"id,omitempty"`
}

// Stamp records the id and submission time.
func (a *LoanApplication) Stamp(id string, at time.Time) {
	a.ID = id
	a.SubmissionDate = datetime.FormatTimestamp(at)
}

// EMIInput returns the calculator fields of the application.
func (a *LoanApplication) EMIInput() loans.EMIInput {
	return loans.EMIInput{
		LoanAmount:   a.LoanAmount,
		InterestRate: a.InterestRate,
		LoanTenure:   a.LoanTenure,
	}
}

// EmployeeAccount is a registered employee. The password is stored and
// compared as entered.
type EmployeeAccount struct {
	Name              string `json:"name" validate:"required" label:"Name" kind:"text"`
	ContactNumber     string `json:"contactNumber" validate:"required" label:"Contact Number" kind:"tel"`
	Email             string `json:"email" validate:"required" label:"Email ID" kind:"email"`
	BankName          string `json:"bankName" validate:"required" label:"Bank Name" kind:"text"`
	BankBranch        string `json:"bankBranch" label:"Bank Branch" kind:"text"`
	AccountHolderName string `json:"accountHolderName" label:"Account Holder Name" kind:"text"`
	AccountNumber     string `json:"accountNumber" validate:"required" label:"Account Number" kind:"text"`
	IFSCCode          string `json:"ifscCode" label:"IFSC Code" kind:"text"`
	BankContactNumber string `json:"bankContactNumber" label:"Bank Contact Number" kind:"tel"`
	BankEmail         string `json:"bankEmail" label:"Bank Email ID" kind:"email"`
	Username          string `json:"username" validate:"required" label:"Username" kind:"text"`
	Password          string `json:"password" validate:"required" label:"Password" kind:"password" export:"-"`

	RegistrationDate string `json:"registrationDate,omitempty"`
	ID               string `json:"id,omitempty"`
}

// Stamp records the id and registration time.
func (e *EmployeeAccount) Stamp(id string, at time.Time) {
	e.ID = id
	e.RegistrationDate = datetime.FormatTimestamp(at)
}

// Ref returns the identity carried by an employee session.
func (e *EmployeeAccount) Ref() EmployeeRef {
	return EmployeeRef{ID: e.ID, Name: e.Name}
}

// EmployeeRef identifies the employee entering an application.
type EmployeeRef struct {
	ID   string
	Name string
}

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" label:"Username" kind:"text"`
	Password string `json:"password" label:"Password" kind:"password"`
}
