package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go-bank-api/model"

	"github.com/gorilla/mux"
)

// AccountService is the part of the bank the account handlers use.
type AccountService interface {
	CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error)
	GetAccount(ctx context.Context, number string) (*model.Account, error)
	UpdateAccount(ctx context.Context, number string, req model.UpdateAccountRequest) (*model.Account, error)
	DeleteAccount(ctx context.Context, number string) error
	GetAccountBalance(ctx context.Context, number string) (*model.Balance, error)
	AccountTransactions(ctx context.Context, number string) ([]model.Transaction, error)
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	bank AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(bank AccountService) *AccountHandler {
	return &AccountHandler{bank: bank}
}

// balanceResponse renders a balance with two fractional digits.
type balanceResponse struct {
	AccountNumber string `json:"account_number"`
	CurrencyCode  string `json:"currency_code"`
	Balance       string `json:"balance"`
}

func newBalanceResponse(b *model.Balance) balanceResponse {
	return balanceResponse{
		AccountNumber: b.AccountNumber,
		CurrencyCode:  b.CurrencyCode,
		Balance:       b.Balance.StringFixed(model.MoneyScale),
	}
}

type accountResponse struct {
	model.Account
	CurrentBalance string `json:"current_balance"`
}

// CreateAccountHandler opens a general account.
// It expects a JSON body with "account_number", "customer_id", "currency_code",
// "initial_balance" and "minimum_balance".
//
// Method: POST
// Path: /accounts
// Success: 201 Created
// Error: 400 Bad Request (for invalid JSON or validation failure)
// Error: 404 Not Found (unknown customer or currency)
// Error: 409 Conflict (account number already in use)
func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	acc, err := h.bank.CreateAccount(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, acc)
}

// GetAccountHandler returns an account together with its current balance.
//
// Method: GET
// Path: /accounts/{account_number}
// Success: 200 OK
// Error: 404 Not Found (if account does not exist)
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["account_number"]

	acc, err := h.bank.GetAccount(r.Context(), number)
	if err != nil {
		writeError(w, r, err, "Failed to retrieve account")
		return
	}
	balance, err := h.bank.GetAccountBalance(r.Context(), number)
	if err != nil {
		writeError(w, r, err, "Failed to retrieve account")
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		Account:        *acc,
		CurrentBalance: balance.Balance.StringFixed(model.MoneyScale),
	})
}

// UpdateAccountHandler changes an account's minimum balance, monthly fee or default currency.
//
// Method: PATCH
// Path: /accounts/{account_number}
// Success: 200 OK
// Error: 400 Bad Request (invalid JSON or a value out of range)
// Error: 404 Not Found (unknown account or currency)
func (h *AccountHandler) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	acc, err := h.bank.UpdateAccount(r.Context(), mux.Vars(r)["account_number"], req)
	if err != nil {
		writeError(w, r, err, "Failed to update account")
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// DeleteAccountHandler closes an account.
//
// Method: DELETE
// Path: /accounts/{account_number}
// Success: 204 No Content
// Error: 404 Not Found
func (h *AccountHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.DeleteAccount(r.Context(), mux.Vars(r)["account_number"]); err != nil {
		writeError(w, r, err, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalanceHandler returns the account's current balance in its default currency.
//
// Method: GET
// Path: /accounts/{account_number}/balance
// Success: 200 OK
// Error: 404 Not Found
func (h *AccountHandler) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	balance, err := h.bank.GetAccountBalance(r.Context(), mux.Vars(r)["account_number"])
	if err != nil {
		writeError(w, r, err, "Failed to retrieve balance")
		return
	}
	writeJSON(w, http.StatusOK, newBalanceResponse(balance))
}

// ListTransactionsHandler returns the account's ledger entries in posting order.
//
// Method: GET
// Path: /accounts/{account_number}/transactions
// Success: 200 OK
// Error: 404 Not Found
func (h *AccountHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := h.bank.AccountTransactions(r.Context(), mux.Vars(r)["account_number"])
	if err != nil {
		writeError(w, r, err, "Failed to retrieve transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}
