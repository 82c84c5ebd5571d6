package portal

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/sixsigma-portal/internal/store"
	"github.com/iwvelando/sixsigma-portal/pkg/datetime"
	"github.com/iwvelando/sixsigma-portal/pkg/loans"
	"github.com/iwvelando/sixsigma-portal/pkg/testutil"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) ApplicationSubmitted(_ context.Context, collection string, app *LoanApplication) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, collection+":"+app.ID)
	return n.err
}

var start = time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)

func newTestCollections() *Collections {
	return NewCollections(store.NewMemoryBackend(),
		store.WithClock(testutil.NewSteppingClock(start, time.Millisecond)))
}

func completeApplication() LoanApplication {
	return LoanApplication{
		Name:          "Ravi Kumar",
		ContactNumber: "9876543210",
		Email:         "ravi@example.com",
		Pincode:       "400001",
		LoanType:      "Home Loan",
		LoanAmount:    "2500000",
		Salary:        "85000",
		SalaryType:    "Account",
	}
}

func completeSignup(username string) EmployeeAccount {
	return EmployeeAccount{
		Name:          "Priya Shah",
		ContactNumber: "9123456780",
		Email:         "priya@example.com",
		BankName:      "State Bank",
		AccountNumber: "001122334455",
		Username:      username,
		Password:      "secret",
	}
}

func TestCustomerSubmit(t *testing.T) {
	ctx := context.Background()
	collections := newTestCollections()
	notifier := &recordingNotifier{}
	service := NewCustomerService(collections, validation.New(), notifier, nil)

	app := completeApplication()
	app.InterestRate = "10"
	record, err := service.Submit(ctx, app)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if record.ID != "1709288130000" {
		t.Errorf("ID = %s", record.ID)
	}
	if _, err := datetime.ParseTimestamp(record.SubmissionDate); err != nil {
		t.Errorf("SubmissionDate %q does not parse: %v", record.SubmissionDate, err)
	}
	if record.InterestRate != "10" {
		t.Errorf("InterestRate = %q, calculator fields are stored as entered", record.InterestRate)
	}

	stored := collections.Customers.Load(ctx)
	if len(stored) != 1 {
		t.Fatalf("customerData has %d records, expected 1", len(stored))
	}
	if collections.EmployeeCustomers.Count(ctx) != 0 {
		t.Error("customer submissions must not land in employeeCustomerData")
	}
	if !reflect.DeepEqual(notifier.calls, []string{"customerData:1709288130000"}) {
		t.Errorf("notifier calls = %v", notifier.calls)
	}
}

func TestCustomerSubmitMissingFields(t *testing.T) {
	required := []string{"name", "contactNumber", "email", "pincode", "loanType", "loanAmount", "salary", "salaryType"}

	for _, field := range required {
		t.Run(field, func(t *testing.T) {
			ctx := context.Background()
			collections := newTestCollections()
			service := NewCustomerService(collections, nil, nil, nil)

			app := completeApplication()
			values := validation.Values(&app)
			values[field] = ""
			clearField(t, &app, field)

			_, err := service.Submit(ctx, app)
			var missing *validation.MissingFieldsError
			if !errors.As(err, &missing) {
				t.Fatalf("Submit() error = %v, expected *validation.MissingFieldsError", err)
			}
			if !reflect.DeepEqual(missing.Fields, []string{field}) {
				t.Errorf("Fields = %v, expected [%s]", missing.Fields, field)
			}
			if missing.Message != validation.MissingFieldsMessage {
				t.Errorf("Message = %q", missing.Message)
			}
			if collections.Customers.Count(ctx) != 0 {
				t.Error("nothing should be appended when a field is missing")
			}
			if got := validation.Values(&app); !reflect.DeepEqual(got, values) {
				t.Errorf("entered values changed: %v", got)
			}
		})
	}
}

func clearField(t *testing.T, app *LoanApplication, field string) {
	t.Helper()
	switch field {
	case "name":
		app.Name = ""
	case "contactNumber":
		app.ContactNumber = ""
	case "email":
		app.Email = ""
	case "pincode":
		app.Pincode = ""
	case "loanType":
		app.LoanType = ""
	case "loanAmount":
		app.LoanAmount = ""
	case "salary":
		app.Salary = ""
	case "salaryType":
		app.SalaryType = ""
	default:
		t.Fatalf("unknown field %s", field)
	}
}

func TestCustomerSubmitAcceptsLooseValues(t *testing.T) {
	ctx := context.Background()
	collections := newTestCollections()
	service := NewCustomerService(collections, nil, nil, nil)

	app := completeApplication()
	app.Email = "not-an-email"
	app.Pincode = "12"
	app.LoanAmount = "-5"

	for i := 0; i < 2; i++ {
		if _, err := service.Submit(ctx, app); err != nil {
			t.Fatalf("Submit() #%d error: %v", i, err)
		}
	}
	if collections.Customers.Count(ctx) != 2 {
		t.Errorf("duplicates and loose values should be accepted, got %d records", collections.Customers.Count(ctx))
	}
}

func TestCustomerSubmitDropsEmployeeFields(t *testing.T) {
	service := NewCustomerService(newTestCollections(), nil, nil, nil)

	app := completeApplication()
	app.EmployeeID = "forged"
	app.EmployeeName = "Mallory"
	record, err := service.Submit(context.Background(), app)
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if record.EmployeeID != "" || record.EmployeeName != "" {
		t.Errorf("employee fields should be cleared, got %+v", record)
	}
}

func TestCustomerSubmitStorageFailure(t *testing.T) {
	backend := &testutil.FailingBackend{SetErr: errors.New("quota exceeded")}
	notifier := &recordingNotifier{}
	service := NewCustomerService(NewCollections(backend), nil, notifier, nil)

	if _, err := service.Submit(context.Background(), completeApplication()); err == nil {
		t.Fatal("expected error when the backend write fails")
	}
	if len(notifier.calls) != 0 {
		t.Error("no notification should be sent for a failed submission")
	}
}

func TestNotifierFailureDoesNotFailSubmission(t *testing.T) {
	ctx := context.Background()
	collections := newTestCollections()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	service := NewCustomerService(collections, nil, notifier, nil)

	if _, err := service.Submit(ctx, completeApplication()); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if collections.Customers.Count(ctx) != 1 {
		t.Error("record should be stored even when notification fails")
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	collections := newTestCollections()
	service := NewEmployeeService(collections, nil, nil, nil)

	account, err := service.Register(ctx, completeSignup("priya"))
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if account.ID == "" || account.RegistrationDate == "" {
		t.Errorf("Register() should stamp id and registrationDate, got %+v", account)
	}

	_, err = service.Register(ctx, completeSignup("priya"))
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("second Register() error = %v, expected ErrDuplicateUsername", err)
	}
	if collections.Employees.Count(ctx) != 1 {
		t.Errorf("employeeData has %d records, expected 1", collections.Employees.Count(ctx))
	}

	if _, err := service.Register(ctx, completeSignup("Priya")); err != nil {
		t.Errorf("usernames differing in case should both register: %v", err)
	}
	if collections.Employees.Count(ctx) != 2 {
		t.Errorf("employeeData has %d records, expected 2", collections.Employees.Count(ctx))
	}
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	collections := newTestCollections()
	service := NewEmployeeService(collections, nil, nil, nil)

	signup := completeSignup("")
	signup.BankName = ""
	_, err := service.Register(ctx, signup)

	var missing *validation.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("Register() error = %v, expected *validation.MissingFieldsError", err)
	}
	if !reflect.DeepEqual(missing.Fields, []string{"bankName", "username"}) {
		t.Errorf("Fields = %v", missing.Fields)
	}
	if collections.Employees.Count(ctx) != 0 {
		t.Error("nothing should be appended when a field is missing")
	}
}

func TestRegisterOptionalBankFields(t *testing.T) {
	service := NewEmployeeService(newTestCollections(), nil, nil, nil)
	signup := completeSignup("minimal")
	signup.BankBranch, signup.AccountHolderName, signup.IFSCCode = "", "", ""
	signup.BankContactNumber, signup.BankEmail = "", ""

	if _, err := service.Register(context.Background(), signup); err != nil {
		t.Errorf("optional bank fields should not be required: %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	service := NewEmployeeService(newTestCollections(), nil, nil, nil)
	registered, err := service.Register(ctx, completeSignup("priya"))
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"exact match", "priya", "secret", false},
		{"wrong password", "priya", "Secret", true},
		{"unknown user", "ravi", "secret", true},
		{"username case differs", "Priya", "secret", true},
		{"empty credentials", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := service.Login(ctx, tt.username, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrAuthenticationFailed) {
					t.Errorf("Login() error = %v, expected ErrAuthenticationFailed", err)
				}
				if account != nil {
					t.Error("failed login must not return an account")
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error: %v", err)
			}
			if account.ID != registered.ID {
				t.Errorf("Login() returned %s, expected %s", account.ID, registered.ID)
			}
		})
	}
}

func TestSubmitCustomer(t *testing.T) {
	ctx := context.Background()
	collections := newTestCollections()
	notifier := &recordingNotifier{}
	service := NewEmployeeService(collections, nil, notifier, nil)

	employee := EmployeeRef{ID: "1700000000000", Name: "Priya Shah"}
	record, err := service.SubmitCustomer(ctx, employee, completeApplication())
	if err != nil {
		t.Fatalf("SubmitCustomer() error: %v", err)
	}
	if record.EmployeeID != employee.ID || record.EmployeeName != employee.Name {
		t.Errorf("employee not attached: %+v", record)
	}

	stored := collections.EmployeeCustomers.Load(ctx)
	if len(stored) != 1 || stored[0].EmployeeName != "Priya Shah" {
		t.Fatalf("employeeCustomerData = %+v", stored)
	}
	if collections.Customers.Count(ctx) != 0 {
		t.Error("employee-entered applications must not land in customerData")
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "employeeCustomerData:"+record.ID {
		t.Errorf("notifier calls = %v", notifier.calls)
	}

	incomplete := completeApplication()
	incomplete.Salary = ""
	if _, err := service.SubmitCustomer(ctx, employee, incomplete); err == nil {
		t.Error("expected missing field error")
	}
	if collections.EmployeeCustomers.Count(ctx) != 1 {
		t.Error("invalid submission should not be stored")
	}
}

func TestPreviewEMIOnBothPaths(t *testing.T) {
	collections := newTestCollections()
	customers := NewCustomerService(collections, nil, nil, nil)
	employees := NewEmployeeService(collections, nil, nil, nil)

	app := LoanApplication{LoanAmount: "100000", InterestRate: "10", LoanTenure: "1"}
	want := loans.EMIResult{EMI: 8792, TotalAmount: 105499, TotalInterest: 5499}

	for name, preview := range map[string]func(LoanApplication) (loans.EMIResult, error){
		"customer": customers.PreviewEMI,
		"employee": employees.PreviewEMI,
	} {
		got, err := preview(app)
		if err != nil {
			t.Fatalf("%s PreviewEMI() error: %v", name, err)
		}
		if got != want {
			t.Errorf("%s PreviewEMI() = %+v, expected %+v", name, got, want)
		}
	}

	if _, err := customers.PreviewEMI(LoanApplication{LoanAmount: "100000"}); err == nil {
		t.Error("expected missing inputs error")
	}
	if collections.Customers.Count(context.Background()) != 0 {
		t.Error("preview must not store anything")
	}
}
