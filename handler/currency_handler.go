package handler

import (
	"context"
	"net/http"

	"go-bank-api/model"

	"github.com/shopspring/decimal"
)

// CurrencyService is the part of the bank the currency handlers use.
type CurrencyService interface {
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error)
	Convert(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (decimal.Decimal, error)
}

// CurrencyHandler serves the currency list and the exchange table.
type CurrencyHandler struct {
	bank CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(bank CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{bank: bank}
}

type conversionResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Result decimal.Decimal `json:"result"`
}

// ListCurrenciesHandler returns every known currency.
//
// Method: GET
// Path: /currencies
func (h *CurrencyHandler) ListCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.bank.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list currencies")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListExchangeRatesHandler returns the directed exchange table.
//
// Method: GET
// Path: /exchange-rates
func (h *CurrencyHandler) ListExchangeRatesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.bank.ListExchangeRates(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list exchange rates")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ConvertHandler converts an amount between two currencies using the exchange table.
//
// Method: GET
// Path: /exchange-rates/convert?from=CAD&to=USD&amount=100
// Success: 200 OK
// Error: 400 Bad Request (missing parameter or malformed amount)
// Error: 422 Unprocessable Entity (no rate for the pair)
func (h *CurrencyHandler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		http.Error(w, "Both 'from' and 'to' are required", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	result, err := h.bank.Convert(r.Context(), from, to, amount)
	if err != nil {
		writeError(w, r, err, "Failed to convert amount")
		return
	}
	writeJSON(w, http.StatusOK, conversionResponse{From: from, To: to, Amount: amount, Result: result})
}
