package handler

import (
	"log/slog"

	"github.com/gorilla/mux"
)

// Bank is everything the HTTP layer needs from the service layer.
type Bank interface {
	AccountService
	CustomerService
	TransactionService
	CurrencyService
}

// NewRouter wires every route to its handler behind the logging middleware.
// A nil logger discards request logs.
func NewRouter(bank Bank, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	accountHandler := NewAccountHandler(bank)
	customerHandler := NewCustomerHandler(bank)
	transactionHandler := NewTransactionHandler(bank)
	currencyHandler := NewCurrencyHandler(bank)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware(logger))

	r.HandleFunc("/customers", customerHandler.CreateCustomerHandler).Methods("POST")
	r.HandleFunc("/customers", customerHandler.ListCustomersHandler).Methods("GET")
	r.HandleFunc("/customers/{customer_id}", customerHandler.GetCustomerHandler).Methods("GET")
	r.HandleFunc("/customers/{customer_id}", customerHandler.UpdateCustomerHandler).Methods("PATCH")
	r.HandleFunc("/customers/{customer_id}", customerHandler.DeleteCustomerHandler).Methods("DELETE")
	r.HandleFunc("/customers/{customer_id}/accounts", customerHandler.ListAccountsHandler).Methods("GET")

	r.HandleFunc("/accounts", accountHandler.CreateAccountHandler).Methods("POST")
	r.HandleFunc("/accounts/{account_number}", accountHandler.GetAccountHandler).Methods("GET")
	r.HandleFunc("/accounts/{account_number}", accountHandler.UpdateAccountHandler).Methods("PATCH")
	r.HandleFunc("/accounts/{account_number}", accountHandler.DeleteAccountHandler).Methods("DELETE")
	r.HandleFunc("/accounts/{account_number}/balance", accountHandler.GetBalanceHandler).Methods("GET")
	r.HandleFunc("/accounts/{account_number}/transactions", accountHandler.ListTransactionsHandler).Methods("GET")

	r.HandleFunc("/transactions", transactionHandler.CreateTransactionHandler).Methods("POST")

	r.HandleFunc("/currencies", currencyHandler.ListCurrenciesHandler).Methods("GET")
	r.HandleFunc("/exchange-rates", currencyHandler.ListExchangeRatesHandler).Methods("GET")
	r.HandleFunc("/exchange-rates/convert", currencyHandler.ConvertHandler).Methods("GET")

	return r
}
