package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/sixsigma-portal/internal/store"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/loans"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrAuthenticationFailed is returned when no account matches a login.
	ErrAuthenticationFailed = errors.New("invalid username or password")

	// ErrDuplicateUsername is returned when a signup reuses a username.
	ErrDuplicateUsername = errors.New("username already registered")
)

// Notifier is told about new applications. Failures are logged and never
// fail the submission.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, collection string, app *LoanApplication) error
}

// Collections groups the three portal collections over one backend.
type Collections struct {
	Customers         *store.Collection[*LoanApplication]
	Employees         *store.Collection[*EmployeeAccount]
	EmployeeCustomers *store.Collection[*LoanApplication]
}

// NewCollections binds the portal collections to backend.
func NewCollections(backend store.Backend, opts ...store.Option) *Collections {
	return &Collections{
		Customers:         store.NewCollection[*LoanApplication](backend, constants.CustomerCollection, opts...),
		Employees:         store.NewCollection[*EmployeeAccount](backend, constants.EmployeeCollection, opts...),
		EmployeeCustomers: store.NewCollection[*LoanApplication](backend, constants.EmployeeCustomerCollection, opts...),
	}
}

// CustomerService handles applications submitted directly by customers.
type CustomerService struct {
	applications *store.Collection[*LoanApplication]
	validator    *validation.Validator
	notifier     Notifier
	logger       *zap.Logger
}

// NewCustomerService returns a CustomerService. notifier may be nil.
func NewCustomerService(collections *Collections, validator *validation.Validator, notifier Notifier, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &CustomerService{
		applications: collections.Customers,
		validator:    validator,
		notifier:     notifier,
		logger:       logger,
	}
}

// Submit validates app and appends it to customerData. Nothing is stored
// when a required field is empty.
func (s *CustomerService) Submit(ctx context.Context, app LoanApplication) (*LoanApplication, error) {
	if err := s.validator.Validate(&app); err != nil {
		return nil, err
	}

	// Never trust employee fields on the customer path.
	app.EmployeeID, app.EmployeeName = "", ""

	record, err := s.applications.Append(ctx, &app)
	if err != nil {
		s.logger.Error("failed to store customer application",
			zap.String("op", "portal.CustomerService.Submit"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("submit application: %w", err)
	}

	s.logger.Info("customer application submitted",
		zap.String("op", "portal.CustomerService.Submit"),
		zap.String("id", record.ID),
		zap.String("loanType", record.LoanType),
	)
	notify(ctx, s.notifier, s.logger, s.applications.Name(), record)
	return record, nil
}

// PreviewEMI computes the EMI for the calculator fields of app.
func (s *CustomerService) PreviewEMI(app LoanApplication) (loans.EMIResult, error) {
	return loans.PreviewEMI(app.EMIInput())
}

// EmployeeService handles employee accounts and applications entered by
// employees.
type EmployeeService struct {
	employees    *store.Collection[*EmployeeAccount]
	applications *store.Collection[*LoanApplication]
	validator    *validation.Validator
	notifier     Notifier
	logger       *zap.Logger
}

// NewEmployeeService returns an EmployeeService. notifier may be nil.
func NewEmployeeService(collections *Collections, validator *validation.Validator, notifier Notifier, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &EmployeeService{
		employees:    collections.Employees,
		applications: collections.EmployeeCustomers,
		validator:    validator,
		notifier:     notifier,
		logger:       logger,
	}
}

// Register validates the signup, rejects a username already present
// (case-sensitive) and appends the account to employeeData.
func (s *EmployeeService) Register(ctx context.Context, account EmployeeAccount) (*EmployeeAccount, error) {
	if err := s.validator.Validate(&account); err != nil {
		return nil, err
	}

	if _, taken := s.employees.Find(ctx, func(existing *EmployeeAccount) bool {
		return existing.Username == account.Username
	}); taken {
		s.logger.Info("signup rejected, username taken",
			zap.String("op", "portal.EmployeeService.Register"),
			zap.String("username", account.Username),
		)
		return nil, ErrDuplicateUsername
	}

	record, err := s.employees.Append(ctx, &account)
	if err != nil {
		s.logger.Error("failed to store employee account",
			zap.String("op", "portal.EmployeeService.Register"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("register employee: %w", err)
	}

	s.logger.Info("employee registered",
		zap.String("op", "portal.EmployeeService.Register"),
		zap.String("id", record.ID),
		zap.String("username", record.Username),
	)
	return record, nil
}

// Login returns the first account whose username and password both match
// exactly. There is no hashing, rate limiting or lockout.
func (s *EmployeeService) Login(ctx context.Context, username, password string) (*EmployeeAccount, error) {
	account, ok := s.employees.Find(ctx, func(existing *EmployeeAccount) bool {
		return existing.Username == username && existing.Password == password
	})
	if !ok {
		s.logger.Info("login failed",
			zap.String("op", "portal.EmployeeService.Login"),
			zap.String("username", username),
		)
		return nil, ErrAuthenticationFailed
	}

	s.logger.Info("employee logged in",
		zap.String("op", "portal.EmployeeService.Login"),
		zap.String("id", account.ID),
	)
	return account, nil
}

// SubmitCustomer validates app, attaches the employee and appends it to
// employeeCustomerData.
func (s *EmployeeService) SubmitCustomer(ctx context.Context, employee EmployeeRef, app LoanApplication) (*LoanApplication, error) {
	if err := s.validator.Validate(&app); err != nil {
		return nil, err
	}

	app.EmployeeID = employee.ID
	app.EmployeeName = employee.Name

	record, err := s.applications.Append(ctx, &app)
	if err != nil {
		s.logger.Error("failed to store employee-entered application",
			zap.String("op", "portal.EmployeeService.SubmitCustomer"),
			zap.String("employeeId", employee.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("submit customer: %w", err)
	}

	s.logger.Info("customer added by employee",
		zap.String("op", "portal.EmployeeService.SubmitCustomer"),
		zap.String("id", record.ID),
		zap.String("employeeId", employee.ID),
	)
	notify(ctx, s.notifier, s.logger, s.applications.Name(), record)
	return record, nil
}

// PreviewEMI computes the EMI for the calculator fields of app.
func (s *EmployeeService) PreviewEMI(app LoanApplication) (loans.EMIResult, error) {
	return loans.PreviewEMI(app.EMIInput())
}

func notify(ctx context.Context, notifier Notifier, logger *zap.Logger, collection string, app *LoanApplication) {
	if notifier == nil {
		return
	}
	if err := notifier.ApplicationSubmitted(ctx, collection, app); err != nil {
		logger.Warn("failed to send application notification",
			zap.String("op", "portal.notify"),
			zap.String("collection", collection),
			zap.String("id", app.ID),
			zap.Error(err),
		)
	}
}
