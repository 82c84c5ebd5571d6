// Package server serves the Six Sigma Services portal: the landing page, the
// customer and employee portals, a small JSON API and the metrics endpoint.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/iwvelando/sixsigma-portal/pkg/loans"
	"github.com/iwvelando/sixsigma-portal/pkg/validation"
	"go.uber.org/zap"
)

// Options wires the handler to its services.
type Options struct {
	Customers   *portal.CustomerService
	Employees   *portal.EmployeeService
	Sessions    *Sessions
	Metrics     *Metrics
	MaxFormSize int64
	Version     string
	Logger      *zap.Logger
}

type handler struct {
	customers   *portal.CustomerService
	employees   *portal.EmployeeService
	sessions    *Sessions
	metrics     *Metrics
	pages       *pageSet
	maxFormSize int64
	version     string
	logger      *zap.Logger
}

// NewHandler constructs the HTTP handler that serves the portal pages and API.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Customers == nil || opts.Employees == nil {
		return nil, errors.New("customer and employee services are required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session manager is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxFormSize := opts.MaxFormSize
	if maxFormSize <= 0 {
		maxFormSize = constants.DefaultMaxFormSizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	pages, err := loadPages()
	if err != nil {
		return nil, err
	}

	h := &handler{
		customers:   opts.Customers,
		employees:   opts.Employees,
		sessions:    opts.Sessions,
		metrics:     metrics,
		pages:       pages,
		maxFormSize: maxFormSize,
		version:     version,
		logger:      logger,
	}

	router := mux.NewRouter()
	router.Use(metrics.middleware)

	// Pages
	router.HandleFunc("/", h.handleHome).Methods(http.MethodGet)
	router.HandleFunc("/customer-portal", h.handleCustomerPortal).Methods(http.MethodGet)
	router.HandleFunc("/customer-portal", h.handleCustomerSubmit).Methods(http.MethodPost)
	router.HandleFunc("/employee-portal", h.handleEmployeePortal).Methods(http.MethodGet)
	router.HandleFunc("/employee-portal/login", h.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/employee-portal/signup", h.handleSignup).Methods(http.MethodPost)
	router.HandleFunc("/employee-portal/logout", h.handleLogout).Methods(http.MethodPost)
	router.HandleFunc("/employee-portal/customers", h.handleEmployeeCustomer).Methods(http.MethodPost)
	router.Handle("/partner-portal",
		http.RedirectHandler("/employee-portal", http.StatusSeeOther)).Methods(http.MethodGet)

	// JSON API
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/emi", h.handleEMI).Methods(http.MethodPost)
	api.HandleFunc("/applications", h.handleApplication).Methods(http.MethodPost)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Static assets
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare embedded static files: %w", err)
	}
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	return router, nil
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleEMI(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEMI"

	var input loans.EMIInput
	if status, err := h.decodeJSON(w, r, &input); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	result, err := loans.PreviewEMI(input)
	h.metrics.preview(err)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), messageFor(err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleApplication(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleApplication"

	var app portal.LoanApplication
	if status, err := h.decodeJSON(w, r, &app); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	record, err := h.customers.Submit(r.Context(), app)
	h.metrics.submission(constants.CustomerCollection, err)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), messageFor(err), op)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

// decodeJSON reads a size-limited JSON body into dst and returns the status
// to report when it cannot.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFormSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge,
				fmt.Errorf("request exceeds limit of %d bytes", h.maxFormSize)
		}
		return http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err)
	}
	return http.StatusOK, nil
}

// statusFor maps a workflow error to its HTTP status.
func statusFor(err error) int {
	var missing *validation.MissingFieldsError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, loans.ErrInvalidNumber),
		errors.Is(err, loans.ErrUndefinedResult):
		return http.StatusBadRequest
	case errors.Is(err, portal.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, portal.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// messageFor is the API error text. Internal failures are not described.
func messageFor(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Info
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
