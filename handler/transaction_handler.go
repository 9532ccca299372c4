package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go-bank-api/model"
)

// TransactionService is the part of the bank the transaction handler uses.
type TransactionService interface {
	PerformTransaction(ctx context.Context, req model.TransactionRequest) ([]model.Transaction, error)
}

// TransactionHandler holds dependencies for transaction-related handlers.
type TransactionHandler struct {
	bank TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(bank TransactionService) *TransactionHandler {
	return &TransactionHandler{bank: bank}
}

// CreateTransactionHandler submits a deposit, withdrawal or transfer. A transfer is applied as two
// ledger entries or not at all. The response lists the entries that were posted, which is empty for
// an unrecognised type.
//
// Method: POST
// Path: /transactions
// Success: 200 OK
// Error: 400 Bad Request (for invalid JSON or validation failure)
// Error: 403 Forbidden (the customer does not hold the source account)
// Error: 404 Not Found (unknown customer or account)
// Error: 422 Unprocessable Entity (insufficient funds, negative amount, no exchange rate)
// Error: 500 Internal Server Error (for storage errors)
func (h *TransactionHandler) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req model.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txs, err := h.bank.PerformTransaction(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to process transaction")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	writeJSON(w, http.StatusOK, txs)
}
