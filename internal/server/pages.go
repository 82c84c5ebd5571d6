package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/format"
	"github.com/iwvelando/sixsigma-portal/pkg/loans"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// Employee portal tabs.
const (
	tabLogin  = "login"
	tabSignup = "signup"
)

type loanProduct struct {
	Name        string
	Description string
}

var loanProducts = []loanProduct{
	{Name: "Home Loan", Description: "Fulfill your dream of owning a home"},
	{Name: "Personal Loan", Description: "For all your personal financial needs"},
	{Name: "Car Loan", Description: "Drive your dream car today"},
	{Name: "Business Loan", Description: "Grow your business with our support"},
	{Name: "Loan Against Property", Description: "Unlock the value of your property"},
	{Name: "Others", Description: "Customized loan solutions for you"},
}

type company struct {
	Name  string
	Phone string
	Email string
}

type fieldView struct {
	validation.Field
	Value string
}

type formView struct {
	Action string
	Fields []fieldView
}

type emiView struct {
	EMI           string
	TotalAmount   string
	TotalInterest string
}

type pageData struct {
	Title    string
	Company  company
	Year     int
	Notice   *portal.Notice
	Products []loanProduct

	Form     formView
	EMI      *emiView
	Employee *portal.EmployeeRef
	Tab      string
	Login    formView
	Signup   formView
}

type pageSet struct {
	templates map[string]*template.Template
}

func loadPages() (*pageSet, error) {
	base, err := template.New("layout.html").ParseFS(templateFiles, "templates/layout.html", "templates/form.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page layout: %w", err)
	}

	set := &pageSet{templates: make(map[string]*template.Template)}
	for _, name := range []string{"home", "customer", "employee"} {
		page, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(templateFiles, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse %s page: %w", name, err)
		}
		set.templates[name] = page
	}
	return set, nil
}

func newPage(title string) pageData {
	return pageData{
		Title:   title,
		Company: company{Name: constants.CompanyName, Phone: constants.CompanyPhone, Email: constants.CompanyEmail},
		Year:    time.Now().Year(),
	}
}

// formOf renders the schema of form with its current values. Password values
// are never echoed back.
func formOf(action string, form any) formView {
	values := validation.Values(form)
	schema := validation.Describe(form)

	view := formView{Action: action, Fields: make([]fieldView, 0, len(schema.Fields))}
	for _, field := range schema.Fields {
		value := values[field.Name]
		if field.Kind == validation.KindPassword {
			value = ""
		}
		view.Fields = append(view.Fields, fieldView{Field: field, Value: value})
	}
	return view
}

func emiViewOf(result loans.EMIResult) *emiView {
	return &emiView{
		EMI:           format.Rupee(result.EMI),
		TotalAmount:   format.Rupee(result.TotalAmount),
		TotalInterest: format.Rupee(result.TotalInterest),
	}
}

func noticeOf(notice portal.Notice) *portal.Notice {
	return &notice
}

func (h *handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	page, ok := h.pages.templates[name]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page",
			zap.String("op", "server.render"),
			zap.String("page", name),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write page", zap.String("page", name), zap.Error(err))
	}
}

// parseForm limits and parses a urlencoded body. It writes the error response
// itself and reports whether the handler should continue.
func (h *handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFormSize)
	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, fmt.Sprintf("form exceeds limit of %d bytes", h.maxFormSize), http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "malformed form", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *handler) handleHome(w http.ResponseWriter, _ *http.Request) {
	data := newPage(constants.CompanyName)
	data.Products = loanProducts
	h.render(w, http.StatusOK, "home", data)
}

func (h *handler) customerPage(app *portal.LoanApplication) pageData {
	data := newPage("Customer Portal")
	data.Form = formOf("/customer-portal", app)
	return data
}

func (h *handler) handleCustomerPortal(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "customer", h.customerPage(&portal.LoanApplication{}))
}

func (h *handler) handleCustomerSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var app portal.LoanApplication
	if err := validation.Bind(r.PostForm, &app); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("action") == "calculate" {
		result, err := h.customers.PreviewEMI(app)
		h.metrics.preview(err)
		data := h.customerPage(&app)
		if err != nil {
			data.Notice = noticeOf(portal.NoticeFor(err))
			h.render(w, statusFor(err), "customer", data)
			return
		}
		data.EMI = emiViewOf(result)
		h.render(w, http.StatusOK, "customer", data)
		return
	}

	_, err := h.customers.Submit(r.Context(), app)
	h.metrics.submission(constants.CustomerCollection, err)
	if err != nil {
		data := h.customerPage(&app)
		data.Notice = noticeOf(portal.NoticeFor(err))
		h.render(w, statusFor(err), "customer", data)
		return
	}

	data := h.customerPage(&portal.LoanApplication{})
	data.Notice = noticeOf(portal.NoticeApplicationSubmitted)
	h.render(w, http.StatusOK, "customer", data)
}

// employeeTabs is the logged-out employee portal.
func (h *handler) employeeTabs(tab string, creds *portal.Credentials, account *portal.EmployeeAccount) pageData {
	data := newPage("Employee Portal")
	data.Tab = tab
	data.Login = formOf("/employee-portal/login", creds)
	data.Signup = formOf("/employee-portal/signup", account)
	return data
}

// employeeDashboard is the intake form of a logged-in employee.
func (h *handler) employeeDashboard(employee portal.EmployeeRef, app *portal.LoanApplication) pageData {
	data := newPage("Employee Dashboard")
	data.Employee = &employee
	data.Form = formOf("/employee-portal/customers", app)
	return data
}

func (h *handler) handleEmployeePortal(w http.ResponseWriter, r *http.Request) {
	if employee, err := h.sessions.Employee(r); err == nil {
		h.render(w, http.StatusOK, "employee", h.employeeDashboard(employee, &portal.LoanApplication{}))
		return
	}

	tab := tabLogin
	if r.URL.Query().Get("tab") == tabSignup {
		tab = tabSignup
	}
	h.render(w, http.StatusOK, "employee", h.employeeTabs(tab, &portal.Credentials{}, &portal.EmployeeAccount{}))
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var creds portal.Credentials
	if err := validation.Bind(r.PostForm, &creds); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	account, err := h.employees.Login(r.Context(), creds.Username, creds.Password)
	h.metrics.login(err)
	if err != nil {
		data := h.employeeTabs(tabLogin, &creds, &portal.EmployeeAccount{})
		data.Notice = noticeOf(portal.NoticeFor(err))
		h.render(w, statusFor(err), "employee", data)
		return
	}

	if err := h.sessions.Issue(w, account.Ref()); err != nil {
		h.logger.Error("failed to issue session",
			zap.String("op", "server.handleLogin"),
			zap.Error(err),
		)
		data := h.employeeTabs(tabLogin, &creds, &portal.EmployeeAccount{})
		data.Notice = noticeOf(portal.NoticeFor(err))
		h.render(w, http.StatusInternalServerError, "employee", data)
		return
	}

	data := h.employeeDashboard(account.Ref(), &portal.LoanApplication{})
	data.Notice = noticeOf(portal.LoginNotice(account.Name))
	h.render(w, http.StatusOK, "employee", data)
}

func (h *handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var account portal.EmployeeAccount
	if err := validation.Bind(r.PostForm, &account); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	_, err := h.employees.Register(r.Context(), account)
	h.metrics.submission(constants.EmployeeCollection, err)
	if err != nil {
		data := h.employeeTabs(tabSignup, &portal.Credentials{}, &account)
		data.Notice = noticeOf(portal.NoticeFor(err))
		h.render(w, statusFor(err), "employee", data)
		return
	}

	data := h.employeeTabs(tabLogin, &portal.Credentials{}, &portal.EmployeeAccount{})
	data.Notice = noticeOf(portal.NoticeRegistrationSuccessful)
	h.render(w, http.StatusOK, "employee", data)
}

func (h *handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Clear(w)
	data := h.employeeTabs(tabLogin, &portal.Credentials{}, &portal.EmployeeAccount{})
	data.Notice = noticeOf(portal.NoticeLoggedOut)
	h.render(w, http.StatusOK, "employee", data)
}

func (h *handler) handleEmployeeCustomer(w http.ResponseWriter, r *http.Request) {
	employee, err := h.sessions.Employee(r)
	if err != nil {
		http.Redirect(w, r, "/employee-portal", http.StatusSeeOther)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	var app portal.LoanApplication
	if err := validation.Bind(r.PostForm, &app); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("action") == "calculate" {
		result, err := h.employees.PreviewEMI(app)
		h.metrics.preview(err)
		data := h.employeeDashboard(employee, &app)
		if err != nil {
			data.Notice = noticeOf(portal.NoticeFor(err))
			h.render(w, statusFor(err), "employee", data)
			return
		}
		data.EMI = emiViewOf(result)
		h.render(w, http.StatusOK, "employee", data)
		return
	}

	_, err = h.employees.SubmitCustomer(r.Context(), employee, app)
	h.metrics.submission(constants.EmployeeCustomerCollection, err)
	if err != nil {
		data := h.employeeDashboard(employee, &app)
		data.Notice = noticeOf(portal.NoticeFor(err))
		h.render(w, statusFor(err), "employee", data)
		return
	}

	data := h.employeeDashboard(employee, &portal.LoanApplication{})
	data.Notice = noticeOf(portal.NoticeCustomerAdded)
	h.render(w, http.StatusOK, "employee", data)
}
