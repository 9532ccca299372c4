package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go-bank-api/model"

	"github.com/gorilla/mux"
)

// CustomerService is the part of the bank the customer handlers use.
type CustomerService interface {
	AddCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomerAccounts(ctx context.Context, customerID string) ([]model.Account, error)
}

// CustomerHandler holds dependencies for customer-related handlers.
type CustomerHandler struct {
	bank CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(bank CustomerService) *CustomerHandler {
	return &CustomerHandler{bank: bank}
}

type customerResponse struct {
	model.Customer
	FullName string `json:"full_name"`
}

// CreateCustomerHandler adds a customer.
//
// Method: POST
// Path: /customers
// Success: 201 Created
// Error: 400 Bad Request (invalid JSON, missing id or first name, id already in use)
func (h *CustomerHandler) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.bank.AddCustomer(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to add customer")
		return
	}
	writeJSON(w, http.StatusCreated, customerResponse{Customer: *c, FullName: c.FullName()})
}

// ListCustomersHandler returns every customer.
//
// Method: GET
// Path: /customers
// Success: 200 OK
func (h *CustomerHandler) ListCustomersHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := h.bank.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list customers")
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerResponse{Customer: c, FullName: c.FullName()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCustomerHandler returns one customer.
//
// Method: GET
// Path: /customers/{customer_id}
// Success: 200 OK
// Error: 404 Not Found
func (h *CustomerHandler) GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.bank.GetCustomer(r.Context(), mux.Vars(r)["customer_id"])
	if err != nil {
		writeError(w, r, err, "Failed to get customer")
		return
	}
	writeJSON(w, http.StatusOK, customerResponse{Customer: *c, FullName: c.FullName()})
}

// UpdateCustomerHandler renames a customer.
//
// Method: PATCH
// Path: /customers/{customer_id}
// Success: 200 OK
// Error: 400 Bad Request, 404 Not Found
func (h *CustomerHandler) UpdateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.bank.UpdateCustomer(r.Context(), mux.Vars(r)["customer_id"], req)
	if err != nil {
		writeError(w, r, err, "Failed to update customer")
		return
	}
	writeJSON(w, http.StatusOK, customerResponse{Customer: *c, FullName: c.FullName()})
}

// DeleteCustomerHandler removes a customer who holds no account.
//
// Method: DELETE
// Path: /customers/{customer_id}
// Success: 204 No Content
// Error: 404 Not Found, 409 Conflict (customer still holds an account)
func (h *CustomerHandler) DeleteCustomerHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.DeleteCustomer(r.Context(), mux.Vars(r)["customer_id"]); err != nil {
		writeError(w, r, err, "Failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAccountsHandler returns the accounts a customer holds.
//
// Method: GET
// Path: /customers/{customer_id}/accounts
// Success: 200 OK
// Error: 404 Not Found
func (h *CustomerHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.bank.ListCustomerAccounts(r.Context(), mux.Vars(r)["customer_id"])
	if err != nil {
		writeError(w, r, err, "Failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}
