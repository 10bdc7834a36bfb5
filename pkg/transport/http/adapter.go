package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/observability"
	"github.com/rhuss/despesas/pkg/transport"
)

// Adapter serves the expense API over HTTP.
// It routes requests to the appropriate service and serializes responses.
type Adapter struct {
	login    transport.Authenticator
	expenses transport.ExpenseService
	health   transport.HealthChecker // nil means always healthy
	gate     transport.Middleware
	mux      *http.ServeMux
	config   Config
	now      func() time.Time
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout int // seconds

	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodySize:     1 << 20, // 1 MB
		ShutdownTimeout: 30,
		MetricsPath:     "/metrics",
	}
}

// Services bundles the collaborators the adapter dispatches to.
type Services struct {
	Login    transport.Authenticator
	Expenses transport.ExpenseService
	Health   transport.HealthChecker

	// Gate authenticates requests to the expense routes. It must reject
	// unauthenticated requests and put the caller identity in the context.
	Gate transport.Middleware
}

// NewAdapter creates an HTTP adapter. Only the expense routes pass through
// the gate; login, health and metrics are public.
func NewAdapter(svc Services, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		login:    svc.Login,
		expenses: svc.Expenses,
		health:   svc.Health,
		gate:     svc.Gate,
		mux:      http.NewServeMux(),
		config:   cfg,
		now:      time.Now,
	}

	a.mux.HandleFunc("POST /auth/login", a.handleLogin)
	a.mux.Handle("GET /expenses", a.protect(a.handleListExpenses))
	a.mux.Handle("POST /expenses", a.protect(a.handleCreateExpense))
	a.mux.Handle("GET /expenses/{id}", a.protect(a.handleGetExpense))
	a.mux.Handle("PUT /expenses/{id}", a.protect(a.handleUpdateExpense))
	a.mux.Handle("DELETE /expenses/{id}", a.protect(a.handleDeleteExpense))
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// metrics collection; cross-cutting middleware is added by the Server.
func (a *Adapter) Handler() http.Handler {
	return observability.MetricsMiddleware(a.mux)
}

// protect wraps h with the authentication gate.
func (a *Adapter) protect(h http.HandlerFunc) http.Handler {
	if a.gate == nil {
		panic("transport/http: expense routes require an authentication gate")
	}
	return a.gate(h)
}

// handleLogin handles POST /auth/login.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	email, password, apiErr := api.ValidateLogin(&req)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	result, err := a.login.Authenticate(r.Context(), email, password)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, result)
}

// handleListExpenses handles GET /expenses.
func (a *Adapter) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := a.expenses.List(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, list)
}

// handleGetExpense handles GET /expenses/{id}.
func (a *Adapter) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := api.ParseExpenseID(r.PathValue("id"))
	if !ok {
		transport.WriteAPIError(w, api.NewExpenseNotFoundError())
		return
	}

	e, err := a.expenses.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, e)
}

// handleCreateExpense handles POST /expenses.
func (a *Adapter) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req api.CreateExpenseRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	in, apiErr := api.ValidateCreateExpense(&req, a.now())
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	e, err := a.expenses.Create(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, e)
}

// handleUpdateExpense handles PUT /expenses/{id}. The body is a partial
// update; absent fields are left unchanged.
func (a *Adapter) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := api.ParseExpenseID(r.PathValue("id"))
	if !ok {
		transport.WriteAPIError(w, api.NewExpenseNotFoundError())
		return
	}

	var req api.UpdateExpenseRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	patch, apiErr := api.ValidateUpdateExpense(&req, a.now())
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	e, err := a.expenses.Update(r.Context(), id, patch)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, e)
}

// handleDeleteExpense handles DELETE /expenses/{id} and returns the
// deleted record.
func (a *Adapter) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := api.ParseExpenseID(r.PathValue("id"))
	if !ok {
		transport.WriteAPIError(w, api.NewExpenseNotFoundError())
		return
	}

	e, err := a.expenses.Delete(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, e)
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.HealthCheck(r.Context()); err != nil {
			http.Error(w, "unhealthy\n", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// decodeBody decodes a JSON request body into v. Unknown fields, trailing
// data and oversized bodies are rejected. It writes the error response and
// returns false on failure.
func (a *Adapter) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	// Validate Content-Type.
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return false
		}
	}

	// Limit body size.
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	if dec.More() {
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "request body must contain a single JSON object"))
		return false
	}

	return true
}
